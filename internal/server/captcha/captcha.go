// Package captcha issues short random codes for the recovery form.
package captcha

import (
	"fmt"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
)

// Length of a generated code.
const Length = 5

// Generate returns a fresh Length-character alphanumeric code.
func Generate() (string, error) {
	code, err := common.RandomString(common.CaptchaAlphabet, Length)
	if err != nil {
		return "", fmt.Errorf("captcha: %w", err)
	}
	return code, nil
}
