package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fledge-social/fledge/backend/internal/apperrors"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperrors.ErrValidation, http.StatusBadRequest},
		{"self reference", apperrors.ErrSelfReference, http.StatusBadRequest},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden},
		{"not found", apperrors.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("post abc: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, apperrors.Status(tc.err))
		})
	}
}
