package controllers

import (
	"net/http"

	"github.com/ityouth/xtn-storefront/api/responses"
	"github.com/ityouth/xtn-storefront/internal/catalog"
	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
	"github.com/ityouth/xtn-storefront/pkg/logger"
)

// Products lists the purchasable catalog, one entry per variant.
func Products(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		entries, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
