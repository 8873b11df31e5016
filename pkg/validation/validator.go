package validation

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Struct validates a struct using its `validate` tags and returns a
// readable error instead of validator's internal representation.
func Struct(s any) error {
	if s == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into plain messages
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q constraint (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ValidateCIDR checks that a string is a parseable IPv4 or IPv6 CIDR.
func ValidateCIDR(cidr string) error {
	if cidr == "" {
		return errors.New("subnet CIDR is empty")
	}
	if _, _, err := net.ParseCIDR(cidr); err != nil {
		return fmt.Errorf("invalid subnet CIDR %q: %w", cidr, err)
	}
	return nil
}

// ValidateAddress checks that a string is a parseable IP address.
func ValidateAddress(address string) error {
	if net.ParseIP(address) == nil {
		return fmt.Errorf("invalid device address %q", address)
	}
	return nil
}
