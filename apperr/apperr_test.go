package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "校验错误", err: Validation("bad input"), want: KindValidation},
		{name: "上游错误", err: Upstream("model timeout"), want: KindUpstream},
		{name: "包装后仍可识别", err: fmt.Errorf("search: %w", NotFound("article 1 not found")), want: KindNotFound},
		{name: "普通错误无分类", err: errors.New("plain"), want: 0},
		{name: "nil无分类", err: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := Authorization("wrong master password")
	if !Is(err, KindAuthorization) {
		t.Error("Is() should match the error kind")
	}
	if Is(err, KindValidation) {
		t.Error("Is() should not match a different kind")
	}
}
