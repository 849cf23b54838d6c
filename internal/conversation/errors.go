package conversation

import (
	"context"
	"errors"
	"fmt"

	apierrors "github.com/diogo/chatllm/internal/errors"
	"github.com/diogo/chatllm/internal/models"
)

// ErrorContent renders a failed round trip as assistant message text
func ErrorContent(err error) string {
	return models.ErrorPrefix + errorReason(err)
}

func errorReason(err error) string {
	if err == nil {
		return "unknown error"
	}

	var (
		timeoutErr *apierrors.TimeoutError
		networkErr *apierrors.NetworkError
		serverErr  *apierrors.ServerError
		parseErr   *apierrors.ParseError
	)

	switch {
	case errors.As(err, &timeoutErr):
		return fmt.Sprintf("chat service at %s did not answer in time", timeoutErr.Endpoint)

	case errors.As(err, &networkErr):
		if errors.Is(err, context.Canceled) {
			return "request cancelled"
		}
		cause := "network failure"
		if networkErr.Err != nil {
			cause = networkErr.Err.Error()
		}
		return fmt.Sprintf("could not reach chat service at %s: %s", networkErr.Endpoint, cause)

	case errors.As(err, &serverErr):
		if serverErr.Detail != "" {
			return fmt.Sprintf("chat service returned HTTP %d: %s", serverErr.StatusCode, serverErr.Detail)
		}
		return fmt.Sprintf("chat service returned HTTP %d", serverErr.StatusCode)

	case errors.As(err, &parseErr):
		if parseErr.Path != "" {
			return fmt.Sprintf("malformed response: %s %q", parseErr.Message, parseErr.Path)
		}
		return "malformed response: " + parseErr.Message

	case errors.Is(err, context.Canceled):
		return "request cancelled"

	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}

	return err.Error()
}
