package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-pos-offline/internal/app"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/utils"
)

// pushAuth verifies the HS256 bearer token of push ingress requests and
// stores its subject under [utils.PushSubjectCtxKey]. Without a configured
// sign key every request passes.
func (h *Handler) pushAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.pushSignKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			http.Error(w, app.MsgInvalidPushToken, http.StatusUnauthorized)
			return
		}

		token, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Send()
			http.Error(w, app.MsgInvalidPushToken, http.StatusUnauthorized)
			return
		}

		subject, err := utils.ValidatePushToken(token, h.pushSignKey)
		if err != nil {
			log.Err(err).Msg(ErrInvalidPushToken.Error())
			http.Error(w, app.MsgInvalidPushToken, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), utils.PushSubjectCtxKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
