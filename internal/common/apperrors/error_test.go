package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("chain", func(t *testing.T) {
		ErrBase := New("base error")
		assert.Equal(t, "base error", ErrBase.Error())
		assert.Equal(t, "msg", ErrBase.New("msg").Error())
		assert.ErrorIs(t, ErrBase, ErrBase)

		ErrFirstLevel := ErrBase.New("first level")
		assert.Equal(t, "first level", ErrFirstLevel.Error())
		assert.ErrorIs(t, ErrFirstLevel, ErrBase)

		ErrOther := New("another error")
		ErrOtherMsg := ErrOther.Msg("another error msg")
		wrapped := ErrFirstLevel.Err(ErrOtherMsg)
		assert.Equal(t, "first level", wrapped.Error())
		assert.ErrorIs(t, wrapped, ErrBase)
		assert.ErrorIs(t, wrapped, ErrFirstLevel)
		assert.ErrorIs(t, wrapped, ErrOther)
		assert.ErrorIs(t, wrapped, ErrOtherMsg)

		goErr := fmt.Errorf("connection refused")
		wrapped = ErrFirstLevel.Err(goErr)
		assert.ErrorIs(t, wrapped, goErr)
		assert.Equal(t, "first level; connection refused", wrapped.ErrorAll())
	})

	t.Run("status code", func(t *testing.T) {
		ErrNotFound := New("not found").SetStatusCode(http.StatusNotFound)
		assert.Equal(t, http.StatusNotFound, ErrNotFound.StatusCode())
		assert.Equal(t, http.StatusNotFound, ErrNotFound.Msg("patient not found").StatusCode())

		wrapped := fmt.Errorf("get patient: %w", ErrNotFound)
		assert.Equal(t, http.StatusNotFound, StatusCode(wrapped))
		assert.Equal(t, 0, StatusCode(errors.New("plain")))
	})

	t.Run("status code is not shared", func(t *testing.T) {
		ErrBase := New("request failed")
		withCode := ErrBase.SetStatusCode(http.StatusBadGateway)
		assert.Equal(t, http.StatusBadGateway, withCode.StatusCode())
		assert.Zero(t, ErrBase.StatusCode())
		assert.Equal(t, http.StatusBadGateway, withCode.Err(errors.New("eof")).StatusCode())
	})

	t.Run("nil target", func(t *testing.T) {
		assert.False(t, errors.Is(New("x"), nil))
	})
}
