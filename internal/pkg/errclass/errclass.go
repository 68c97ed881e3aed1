// Package errclass triages boundary errors (transport failures, upstream
// envelope errors, handler panics) into a small taxonomy that decides retry,
// notification and logging behavior. Classification is pure: the caller acts
// on the returned record.
package errclass

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/sorenkv/cardvault-backend/internal/platform/apierr"
)

type Type string

const (
	TypeNetwork        Type = "network"
	TypeAPI            Type = "api"
	TypeValidation     Type = "validation"
	TypeAuthentication Type = "authentication"
	TypeAuthorization  Type = "authorization"
	TypeRateLimit      Type = "rate_limit"
	TypeServer         Type = "server"
	TypeClient         Type = "client"
	TypeUnknown        Type = "unknown"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Classification is the triage record for one error.
type Classification struct {
	Type        Type
	Severity    Severity
	Retryable   bool
	UserMessage string
	Notify      bool
	Log         bool
	Context     string
}

type pattern struct {
	re     *regexp.Regexp
	result Classification
}

// Classifier holds an ordered pattern list. Order is the tie-break rule:
// the first matching pattern governs even when a later one would also match.
// Construct one at startup and pass it to call sites; there is no package
// level singleton.
type Classifier struct {
	patterns []pattern
}

// New returns a classifier with the default pattern list.
func New() *Classifier {
	mk := func(expr string, result Classification) pattern {
		return pattern{re: regexp.MustCompile(`(?i)` + expr), result: result}
	}
	return &Classifier{patterns: []pattern{
		mk(`network|fetch failed|timed? ?out|timeout|cors|connection (refused|reset)|no such host|dns`, Classification{
			Type: TypeNetwork, Severity: SeverityHigh, Retryable: true,
			UserMessage: "Network error. Check your connection and try again.",
			Notify:      true, Log: true,
		}),
		mk(`\b400\b|bad request`, Classification{
			Type: TypeValidation, Severity: SeverityLow, Retryable: false,
			UserMessage: "The request was invalid. Check the form and try again.",
			Notify:      true, Log: false,
		}),
		mk(`\b401\b|unauthorized|not authenticated|invalid token|token expired`, Classification{
			Type: TypeAuthentication, Severity: SeverityHigh, Retryable: false,
			UserMessage: "Your session has expired. Log in again.",
			Notify:      true, Log: true,
		}),
		mk(`\b403\b|forbidden|not allowed|access denied`, Classification{
			Type: TypeAuthorization, Severity: SeverityHigh, Retryable: false,
			UserMessage: "You do not have access to this resource.",
			Notify:      true, Log: true,
		}),
		mk(`\b404\b|not found`, Classification{
			Type: TypeAPI, Severity: SeverityLow, Retryable: false,
			UserMessage: "The requested item could not be found.",
			Notify:      true, Log: false,
		}),
		mk(`\b429\b|rate limit|too many requests`, Classification{
			Type: TypeRateLimit, Severity: SeverityMedium, Retryable: true,
			UserMessage: "Too many requests. Wait a moment and try again.",
			Notify:      true, Log: true,
		}),
		mk(`\b50[0-9]\b|server error|internal error|service unavailable|bad gateway`, Classification{
			Type: TypeServer, Severity: SeverityCritical, Retryable: true,
			UserMessage: "The server hit a problem. Try again shortly.",
			Notify:      true, Log: true,
		}),
		mk(`validation|invalid|required|must be|may not be`, Classification{
			Type: TypeValidation, Severity: SeverityLow, Retryable: false,
			UserMessage: "Some fields are invalid. Check the form and try again.",
			Notify:      true, Log: false,
		}),
		mk(`cannot read|undefined|null pointer|nil pointer|is not a function`, Classification{
			Type: TypeClient, Severity: SeverityHigh, Retryable: false,
			UserMessage: "Something went wrong on our side.",
			Notify:      false, Log: true,
		}),
	}}
}

// Classify triages an arbitrary caught value. It is a total function: any
// input, including nil, yields a usable record. context is free text (the
// operation that failed) carried through for logging.
func (c *Classifier) Classify(v any, context string) Classification {
	msg := MessageOf(v)

	for _, p := range c.patterns {
		if msg != "" && p.re.MatchString(msg) {
			out := p.result
			out.Context = context
			return out
		}
	}

	if err, ok := v.(error); ok {
		if out, matched := classifyByStatus(err); matched {
			out.Context = context
			return out
		}
		var netErr net.Error
		if errors.As(err, &netErr) {
			out := Classification{
				Type: TypeNetwork, Severity: SeverityHigh, Retryable: netErr.Timeout(),
				UserMessage: "Network error. Check your connection and try again.",
				Notify:      true, Log: true, Context: context,
			}
			return out
		}
	}

	return Classification{
		Type: TypeUnknown, Severity: SeverityMedium, Retryable: false,
		UserMessage: "Something went wrong. Try again.",
		Notify:      true, Log: true, Context: context,
	}
}

// classifyByStatus is the numeric fallback for errors that carry an HTTP
// status but no recognizable message.
func classifyByStatus(err error) (Classification, bool) {
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status == 0 {
		return Classification{}, false
	}
	switch {
	case ae.Status == 401:
		return Classification{Type: TypeAuthentication, Severity: SeverityHigh,
			UserMessage: "Your session has expired. Log in again.", Notify: true, Log: true}, true
	case ae.Status == 403:
		return Classification{Type: TypeAuthorization, Severity: SeverityHigh,
			UserMessage: "You do not have access to this resource.", Notify: true, Log: true}, true
	case ae.Status == 429:
		return Classification{Type: TypeRateLimit, Severity: SeverityMedium, Retryable: true,
			UserMessage: "Too many requests. Wait a moment and try again.", Notify: true, Log: true}, true
	case ae.Status >= 400 && ae.Status < 500:
		return Classification{Type: TypeAPI, Severity: SeverityLow,
			UserMessage: "The request could not be completed.", Notify: true, Log: false}, true
	case ae.Status >= 500:
		return Classification{Type: TypeServer, Severity: SeverityCritical, Retryable: true,
			UserMessage: "The server hit a problem. Try again shortly.", Notify: true, Log: true}, true
	}
	return Classification{}, false
}

// MessageOf extracts a textual message from the conventional error shapes:
// Go errors, plain strings, decoded JSON error blocks (message/error/detail
// keys), and a stringified fallback for anything else.
func MessageOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case error:
		return t.Error()
	case string:
		return t
	case map[string]any:
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := t[key].(string); ok && s != "" {
				return s
			}
		}
		return fmt.Sprint(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
