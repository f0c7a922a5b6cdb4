package controller

import (
	"errors"
	"net/http"
	"strconv"
)

// parseHoursQuery returns the history span from ?hours=N (default 1).
func parseHoursQuery(r *http.Request) (int, error) {
	s := r.URL.Query().Get("hours")
	if s == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid 'hours' (expected integer)")
	}
	if n <= 0 {
		return 0, errors.New("'hours' must be > 0")
	}
	if n > 24*31 {
		return 0, errors.New("'hours' must be <= 744")
	}
	return n, nil
}
