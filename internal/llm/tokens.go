package llm

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates the number of tokens in a text.
type TokenCounter func(text string) int

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
	encoderErr  error
)

func sharedEncoder() (*tiktoken.Tiktoken, error) {
	encoderOnce.Do(func() {
		encoder, encoderErr = tiktoken.GetEncoding("cl100k_base")
	})
	return encoder, encoderErr
}

// EstimateTokens counts tokens with the cl100k_base encoding, falling back to
// CountTokens when the encoding cannot be loaded.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	enc, err := sharedEncoder()
	if err != nil {
		return CountTokens(text)
	}
	return len(enc.Encode(text, []string{"all"}, nil))
}

// CountTokens estimates the token count using a runes/4 approximation.
func CountTokens(content string) int {
	if len(content) == 0 {
		return 0
	}
	return utf8.RuneCountInString(content) / 4
}
