package service

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/Apie237/mern-chatapp/pkg/errors"
)

var authOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_operations_total",
		Help: "Auth operations by outcome",
	},
	[]string{"operation", "outcome"},
)

// observe counts one operation. The outcome is "success" or the lower-cased
// error code.
func observe(operation string, err error) {
	authOperationsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return strings.ToLower(appErr.Code)
	}
	return "error"
}
