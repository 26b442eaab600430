package api

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateOperatorPassword(t *testing.T) {
	tests := []struct {
		password string
		want     []error
	}{
		{"S3cur3P@ssw0rd!", nil},
		{"Xy9#mK2$pLq", nil},
		{"Sh0rt!", []error{ErrPasswordLength}},
		{"alllowercase1!", []error{ErrPasswordClasses}},
		{"Has Space 1!x", []error{ErrPasswordSpaces}},
		{"short", []error{ErrPasswordLength, ErrPasswordClasses}},
		{strings.Repeat("Aa1!", 19), []error{ErrPasswordLength}},
	}
	for _, tt := range tests {
		err := ValidateOperatorPassword(tt.password)
		if tt.want == nil {
			if err != nil {
				t.Errorf("%q: unexpected error %v", tt.password, err)
			}
			continue
		}
		for _, w := range tt.want {
			if !errors.Is(err, w) {
				t.Errorf("%q: err = %v, want %v", tt.password, err, w)
			}
		}
	}
}
