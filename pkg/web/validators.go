package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

func newComparisonValidator(valueInClosure int64, compareFn func(argValue, closedValue int64) bool) ParamValidator {
	return func(argValue int64) bool {
		return compareFn(argValue, valueInClosure)
	}
}

// gte returns a ParamValidator that checks if the argument is greater than or equal to the value captured in the closure.
func gte(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue >= closedValue
	})
}

// gt returns a ParamValidator that checks if the argument is greater than the value captured in the closure.
func gt(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue > closedValue
	})
}

// QueryIntGte reads an optional query parameter that must be >= minValue; def is used when it is absent.
func QueryIntGte(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def, minValue int64) (int, bool) {
	return parseValidate(r, w, logger, key, def, gte(minValue))
}

// QueryIntGt reads an optional query parameter that must be > minValue; def is used when it is absent.
func QueryIntGt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def, minValue int64) (int, bool) {
	return parseValidate(r, w, logger, key, def, gt(minValue))
}

func parseValidate(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def int64, pValidator ParamValidator) (int, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return int(def), true
	}
	intValue, err := strconv.ParseInt(value, 10, 32)
	if err != nil || !pValidator(intValue) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return int(intValue), true
}
