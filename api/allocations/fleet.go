package allocations

import (
	"net/http"

	"github.com/kilianp07/mealmatch/core/model"
	"github.com/kilianp07/mealmatch/core/store"
)

// NewRecipientsHandler exposes the recipients and their remaining capacity via
// GET /api/recipients. With ?open=true only recipients with capacity left are
// listed.
func NewRecipientsHandler(rs *store.RecipientStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		list := rs.List()
		if r.URL.Query().Get("open") == "true" {
			open := list[:0]
			for _, rec := range list {
				if rec.CanReceive() {
					open = append(open, rec)
				}
			}
			list = open
		}
		if list == nil {
			list = []model.Recipient{}
		}
		writeJSON(w, http.StatusOK, list)
	})
}

// NewVolunteersHandler exposes the volunteers via GET /api/volunteers. With
// ?available=true only volunteers that can still make a trip are listed.
func NewVolunteersHandler(vs *store.VolunteerStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		list := vs.List()
		if r.URL.Query().Get("available") == "true" {
			free := list[:0]
			for _, v := range list {
				if v.Available {
					free = append(free, v)
				}
			}
			list = free
		}
		if list == nil {
			list = []model.Volunteer{}
		}
		writeJSON(w, http.StatusOK, list)
	})
}
