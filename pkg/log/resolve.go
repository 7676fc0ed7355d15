package log

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mwantia/fabric/pkg/container"
)

var loggerServiceType = reflect.TypeOf((*LoggerService)(nil)).Elem()

// ResolveLogger looks up the registered LoggerService in the container.
// A name of the form "logger:<name>" or "<name>" returns a named child logger,
// an empty name or "logger" returns the base logger.
func ResolveLogger(ctx context.Context, sc *container.ServiceContainer, name string) (LoggerService, error) {
	ok, resolved := sc.ResolveByType(ctx, loggerServiceType)
	if !ok {
		return nil, fmt.Errorf("no logger service registered")
	}

	base, ok := resolved.(LoggerService)
	if !ok {
		return nil, fmt.Errorf("resolved service of type %T is not a LoggerService", resolved)
	}

	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "logger") {
		name = ""
	} else if len(name) > len("logger:") && strings.EqualFold(name[:len("logger:")], "logger:") {
		name = strings.TrimSpace(name[len("logger:"):])
	}

	if name == "" {
		return base, nil
	}
	return base.Named(name), nil
}
