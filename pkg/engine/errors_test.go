package engine

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassifyHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		class  ErrorClass
		code   string
	}{
		{http.StatusBadRequest, ErrorClassPermanent, ErrCodeValidation},
		{http.StatusUnauthorized, ErrorClassPermanent, ErrCodePermissionDenied},
		{http.StatusNotFound, ErrorClassPermanent, ErrCodeNotFound},
		{http.StatusConflict, ErrorClassConflict, ErrCodeConflict},
		{http.StatusTooManyRequests, ErrorClassThrottled, ErrCodeRateLimited},
		{http.StatusBadGateway, ErrorClassTransient, ErrCodeProviderFailed},
		{http.StatusGatewayTimeout, ErrorClassTransient, ErrCodeTimeout},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			if got := ClassifyHTTPStatus(tt.status); got != tt.class {
				t.Errorf("class: expected %s, got %s", tt.class, got)
			}
			if got := CodeForHTTPStatus(tt.status); got != tt.code {
				t.Errorf("code: expected %s, got %s", tt.code, got)
			}
		})
	}
}

func TestEngineError_WrapAndClassify(t *testing.T) {
	cause := errors.New("503 service unavailable")
	err := fmt.Errorf("checking availability: %w",
		NewTransientError("provider unavailable", cause).WithProvider("gandi.net").WithStep(StepDomain))

	if !IsTransient(err) || !IsRetryable(err) {
		t.Error("expected transient, retryable error")
	}
	if IsPermanent(err) {
		t.Error("did not expect permanent classification")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause in error chain")
	}

	want := "checking availability: [transient] provider unavailable (provider=gandi.net, step=Domain): 503 service unavailable"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestEngineError_IsMatchesClassAndCode(t *testing.T) {
	err := NewPermanentError("domain unavailable", nil).WithCode(ErrCodeUnavailable)

	if !errors.Is(err, &EngineError{Class: ErrorClassPermanent, Code: ErrCodeUnavailable}) {
		t.Error("expected match on class and code")
	}
	if errors.Is(err, &EngineError{Class: ErrorClassPermanent, Code: ErrCodeNotFound}) {
		t.Error("did not expect match on different code")
	}
}
