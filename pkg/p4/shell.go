package p4

import (
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/jingkaihe/p4gate/internal/errx"
	"github.com/jingkaihe/p4gate/pkg/logging"
)

// QuoteArgs renders argv as a single shell-quoted line.
func QuoteArgs(argv []string) string {
	return shellquote.Join(argv...)
}

// DisplayCommand renders a redacted argv for people. It quotes like
// QuoteArgs but leaves the password mask as written.
func DisplayCommand(argv []string) string {
	words := make([]string, len(argv))
	for i, arg := range argv {
		if arg == logging.Mask {
			words[i] = arg
			continue
		}
		words[i] = shellquote.Join(arg)
	}
	return strings.Join(words, " ")
}

// SplitTemplate splits a command template such as "sync -f" into words
// using shell quoting rules.
func SplitTemplate(template string) ([]string, error) {
	if strings.TrimSpace(template) == "" {
		return nil, ErrEmptyTemplate
	}
	words, err := shellquote.Split(template)
	if err != nil {
		return nil, errx.Wrap(ErrParseTemplate, err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyTemplate
	}
	return words, nil
}
