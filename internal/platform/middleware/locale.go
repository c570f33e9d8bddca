// Copyright (c) 2026 RuneBingo. All rights reserved.

package middleware

import (
	"net/http"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/constants"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/ctxutil"
)

// LocaleNegotiator picks a supported locale from an Accept-Language value.
type LocaleNegotiator interface {
	Negotiate(acceptLanguage string) string
}

// Locale stores the negotiated locale in the request context and echoes it
// back through Content-Language.
func Locale(negotiator LocaleNegotiator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			locale := negotiator.Negotiate(request.Header.Get(constants.HeaderAcceptLanguage))

			writer.Header().Set("Content-Language", locale)
			ctx := ctxutil.WithLocale(request.Context(), locale)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
