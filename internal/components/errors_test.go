package components

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrToStatus(t *testing.T) {
	err := errors.New("realm gone")
	err = ErrWrap(http.StatusBadRequest, err, "cannot migrate")
	err = errors.Wrap(err, "while processing item")
	err = errors.Wrap(err, "while supervising migration")

	assert.Equal(t, http.StatusBadRequest, ErrToStatus(err))

	t.Run("plain errors map to internal server error", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, ErrToStatus(errors.New("boom")))
	})

	t.Run("status survives wrapping with NewErr", func(t *testing.T) {
		err := NewErr(http.StatusConflict, errors.New("name taken"))
		assert.Equal(t, http.StatusConflict, ErrToStatus(errors.Wrap(err, "copy step")))
	})
}
