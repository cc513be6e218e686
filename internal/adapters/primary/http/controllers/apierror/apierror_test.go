package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("product 1: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad price", domain.ErrInvalidArgument), http.StatusBadRequest},
		{domain.ErrAlreadyExists, http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := Status(c.err); got != c.want {
			t.Errorf("Status(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
