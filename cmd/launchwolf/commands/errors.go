package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/launchwolf/launchwolf/pkg/engine"
	"github.com/launchwolf/launchwolf/pkg/prompt"
	"github.com/launchwolf/launchwolf/pkg/transports/rest"
)

const rerunHint = "An error occurred, see above for details. After fixing the problem you can safely re-run this tool to continue."

// reportedError marks an error whose details were already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// printLaunchError prints what went wrong with enough context to fix it.
// Provider API errors include the response status, body and headers.
func printLaunchError(w io.Writer, err error) error {
	fmt.Fprintln(w)
	if apiErr, ok := rest.AsAPIError(err); ok {
		fmt.Fprintln(w, prompt.Failure(fmt.Sprintf("%s %s %s failed", apiErr.Provider, apiErr.Method, apiErr.URL)))
		fmt.Fprintf(w, "Status:  %s\n", apiErr.Status)
		fmt.Fprintf(w, "Body:    %s\n", strings.TrimSpace(string(apiErr.Body)))
		fmt.Fprintln(w, "Headers:")
		names := make([]string, 0, len(apiErr.Header))
		for name := range apiErr.Header {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %s\n", name, strings.Join(apiErr.Header[name], ", "))
		}
	} else {
		fmt.Fprintln(w, prompt.Failure(err.Error()))
	}

	if engine.IsRetryable(err) {
		fmt.Fprintln(w, prompt.Styles.Muted.Render("The provider reported a temporary problem, retrying later will likely help."))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rerunHint)
	return &reportedError{err: err}
}
