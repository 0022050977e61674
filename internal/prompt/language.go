package prompt

type language struct {
	system      string
	intro       string
	goals       string
	goalTerm    string
	goalChars   string
	state       string
	stateChars  string
	stateTerm   string
	strategies  string
	deltas      string
	addTerm     string
	removeTerm  string
	useSynonyms string
	addChars    string
	removeChars string
	strict      string
	textHeader  string
	outro       string
}

var english = language{
	system: `You are an SEO copy editor. You rewrite blog posts so that they meet exact word-count and length targets while staying natural and accurate.

OUTPUT FORMAT:
Return only the rewritten post in markdown. No explanations or commentary.`,
	intro:      `Rewrite the following blog post about "%s" so that it meets every target below.`,
	goals:      "TARGETS:",
	goalTerm:   `- "%s": between %d and %d exact occurrences`,
	goalChars:  "- Length: between %d and %d characters, not counting whitespace",
	state:      "CURRENT STATE:",
	stateChars: "- Length: %d characters",
	stateTerm:  `- "%s": %d occurrences`,
	strategies: `HOW TO REDUCE OVERUSED TERMS (in order of preference):
1. Replace "%s" or its parts with natural synonyms or related expressions.
2. Omit the term where the context already makes it clear.
3. Replace it with a reference such as "this" or "it" ("%s is important" -> "this is important"; "in the case of %s" -> "in this case").`,
	deltas:      "REQUIRED CHANGES:",
	addTerm:     `+%d occurrences of "%s"`,
	removeTerm:  `-%d occurrences of "%s"`,
	useSynonyms: " (alternatives: %s)",
	addChars:    "add about %d characters",
	removeChars: "remove about %d characters",
	strict: `STRICT RULES:
- Occurrences are counted as exact whole-word matches, like a find-in-page search.
- Keep every heading line exactly as it is.
- Do not add a references or sources section.
- Do not wrap the output in code fences.`,
	textHeader: "POST:",
	outro:      "Keep the meaning, expertise and readability of the original.",
}

var korean = language{
	system: `당신은 SEO 블로그 편집자입니다. 글의 자연스러움과 정확성을 유지하면서 정해진 출현 횟수와 글자수 조건을 맞추도록 글을 다시 씁니다.

출력 형식:
수정된 글만 마크다운으로 출력하세요. 설명이나 코멘트는 쓰지 마세요.`,
	intro:      `다음 '%s' 관련 블로그 글을 아래 목표를 모두 만족하도록 최적화해주세요.`,
	goals:      "🎯 목표:",
	goalTerm:   "- '%s': 정확히 %d-%d회 사용",
	goalChars:  "- 전체 글자수: %d-%d자 (공백 제외)",
	state:      "📊 현재 상태:",
	stateChars: "- 글자수: %d자",
	stateTerm:  "- '%s': %d회",
	strategies: `✂️ 과다 사용된 단어 최적화 방법 (우선순위 순):
1. 동의어/유의어로 대체: '%s' 또는 각 형태소를 자연스러운 동의어/유의어로 대체
2. 문맥상 자연스러운 생략: "%s가 중요합니다" → "중요합니다"
3. 지시어로 대체: "%s는" → "이것은", "이 경우", "해당", "이러한" 등의 지시어 활용`,
	deltas:      "📝 반드시 반영할 변경:",
	addTerm:     "'%[2]s' %[1]d회 추가",
	removeTerm:  "'%[2]s' %[1]d회 줄이기",
	useSynonyms: " (대체 표현: %s)",
	addChars:    "약 %d자 늘리기",
	removeChars: "약 %d자 줄이기",
	strict: `⚠️ 엄격한 규칙:
- ctrl+f로 검색했을 때의 횟수를 기준으로 함
- 제목(#으로 시작하는 줄)은 그대로 유지
- 참고자료 섹션을 새로 추가하지 말 것
- 코드 블록으로 감싸지 말 것`,
	textHeader: "원문:",
	outro:      "전문성은 유지하되 읽기 쉽고 자연스럽게 수정해주세요.",
}
