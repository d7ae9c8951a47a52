package errors

import (
	"fmt"
	"testing"
)

func TestAsValidation_Wrapped(t *testing.T) {
	err := fmt.Errorf("保存失败: %w", NewValidation("得分 %d 超过满分 %d", 120, 100))

	ve, ok := AsValidation(err)
	if !ok {
		t.Fatal("应识别出被包装的 ValidationError")
	}
	if ve.Message != "得分 120 超过满分 100" {
		t.Errorf("消息不符: %s", ve.Message)
	}
}

func TestAsValidation_Other(t *testing.T) {
	if _, ok := AsValidation(fmt.Errorf("boom")); ok {
		t.Error("普通错误不应被识别为 ValidationError")
	}
}
