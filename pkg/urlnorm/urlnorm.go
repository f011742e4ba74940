// Package urlnorm normalizes user supplied URLs before they are shortened.
//
// Normalization trims the input and makes sure it carries an explicit http or
// https scheme. Validation is purely syntactic: nothing is fetched.
package urlnorm

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyInput is returned when the input is empty or consists of whitespace only.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidURL is returned when the normalized input is not a valid http or https URL.
	ErrInvalidURL = errors.New("invalid url")
)

const defaultScheme = "https://"

var schemePrefix = regexp.MustCompile(`(?i)^https?://`)

var validate = validator.New()

// Normalize returns raw as an absolute http or https URL.
// Input without a scheme gets the https scheme prepended.
//
// Bare words such as "localhost" or "not-a-valid-url" are accepted once
// prefixed, because they form a syntactically valid host. Hosts with
// characters outside RFC 3986, ports outside 1..65535 and malformed
// dotted-quad addresses are rejected.
func Normalize(raw string) (string, error) {
	const op = "urlnorm.Normalize"

	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyInput)
	}

	if !schemePrefix.MatchString(candidate) {
		candidate = defaultScheme + candidate
	}

	if err := validate.Var(candidate, "http_url"); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidURL)
	}

	u, err := url.Parse(candidate)
	if err != nil || !validPort(u.Port()) || !validHost(u.Hostname()) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidURL)
	}

	return candidate, nil
}

func validPort(port string) bool {
	if port == "" {
		return true
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// validHost accepts an IP literal or an RFC 3986 reg-name. Non-ASCII
// labels are let through as internationalized names. A host whose last
// label is numeric must be a valid IPv4 address.
func validHost(host string) bool {
	if host == "" {
		return false
	}

	if strings.Contains(host, ":") {
		return net.ParseIP(host) != nil
	}

	for _, r := range host {
		if r >= 0x80 {
			continue
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-._~!$&'()*+,;=", r):
		default:
			return false
		}
	}

	labels := strings.Split(strings.TrimSuffix(host, "."), ".")
	if isNumeric(labels[len(labels)-1]) {
		ip := net.ParseIP(host)
		return ip != nil && ip.To4() != nil
	}

	return true
}

func isNumeric(label string) bool {
	if label == "" {
		return false
	}
	for _, r := range label {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
