package httppresentation

import (
	"io"
	"mime/multipart"
	"net/http"

	appaccount "github.com/Zhima-Mochi/fooddelivery/internal/application/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"

	"github.com/go-chi/chi/v5"
)

var errNotSelf = errs.NotAuthorized("You can only update your own account.")

// withImage reads the "image" form file and passes it to fn.
func withImage(w http.ResponseWriter, r *http.Request, fn func(file io.Reader, name string)) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeDomainError(w, r, errImageRequired)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeDomainError(w, r, errImageRequired)
		return
	}
	defer func(f multipart.File) { _ = f.Close() }(file)
	fn(file, header.Filename)
}

func (h *Handler) handleRegisterCustomer(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, account.RoleCustomer)
}

func (h *Handler) handleRegisterPartner(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, account.RolePartner)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, role account.Role) {
	accs, err := h.svc.Accounts.List(r.Context(), role)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponses(accs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, role account.Role) {
	acc, err := h.svc.Accounts.Get(r.Context(), role, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

// update only lets callers edit their own account.
func (h *Handler) update(w http.ResponseWriter, r *http.Request, role account.Role) {
	id := chi.URLParam(r, "id")
	caller := claimsFrom(r.Context())
	if caller.Role != role || caller.UserID != id {
		writeDomainError(w, r, errNotSelf)
		return
	}
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	acc, err := h.svc.Accounts.Update(r.Context(), appaccount.UpdateCommand{Role: role, ID: id, Profile: req.toProfile()})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request, role account.Role) {
	if err := h.svc.Accounts.Delete(r.Context(), role, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, account.RoleCustomer)
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, account.RoleCustomer)
}

func (h *Handler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, account.RoleCustomer)
}

func (h *Handler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, account.RoleCustomer)
}

func (h *Handler) handleListPartners(w http.ResponseWriter, r *http.Request) {
	accs, err := h.svc.Accounts.ListPartners(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponses(accs))
}

func (h *Handler) handleGetPartner(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, account.RolePartner)
}

func (h *Handler) handleUpdatePartner(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, account.RolePartner)
}

func (h *Handler) handleDeletePartner(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, account.RolePartner)
}

func (h *Handler) handleVerifyPartner(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	acc, err := h.svc.Accounts.VerifyPartner(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (h *Handler) handleUpdateAdmin(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, account.RoleAdmin)
}
