// cmd/web/routes.go
//
// `web routes` – print the route table without opening a listener.

package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List mounted routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := boot(cmd, false)
			if err != nil {
				return err
			}
			defer a.shutdown()

			r, err := router(a)
			if err != nil {
				return err
			}
			return chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%-7s %s\n", method, strings.Replace(route, "/*/", "/", -1))
				return err
			})
		},
	}
}
