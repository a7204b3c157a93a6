package httppresentation

import (
	"io"
	"net/http"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleListStores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stores, err := h.svc.Catalog.ListStores(r.Context(), catalog.StoreFilter{
		PartnerID: q.Get("partnerId"),
		Category:  q.Get("category"),
		City:      q.Get("city"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]storeResponse, 0, len(stores))
	for _, s := range stores {
		out = append(out, toStoreResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetStore(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Catalog.GetStore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStoreResponse(s))
}

func (h *Handler) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	s, err := h.svc.Catalog.CreateStore(r.Context(), claimsFrom(r.Context()), req.toDetails())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStoreResponse(s))
}

func (h *Handler) handleUpdateStore(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	s, err := h.svc.Catalog.UpdateStore(r.Context(), claimsFrom(r.Context()), chi.URLParam(r, "id"), req.toDetails())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStoreResponse(s))
}

func (h *Handler) handleUploadStoreImage(w http.ResponseWriter, r *http.Request) {
	withImage(w, r, func(file io.Reader, name string) {
		s, err := h.svc.Catalog.UploadStoreImage(r.Context(), claimsFrom(r.Context()), chi.URLParam(r, "id"), file, name)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toStoreResponse(s))
	})
}

func (h *Handler) handleDeleteStore(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.DeleteStore(r.Context(), claimsFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Catalog.ListProducts(r.Context(), r.URL.Query().Get("storeId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	p, err := h.svc.Catalog.CreateProduct(r.Context(), claimsFrom(r.Context()), req.StoreID, req.toDetails())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	p, err := h.svc.Catalog.UpdateProduct(r.Context(), claimsFrom(r.Context()), chi.URLParam(r, "id"), req.toDetails())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleUploadProductImage(w http.ResponseWriter, r *http.Request) {
	withImage(w, r, func(file io.Reader, name string) {
		p, err := h.svc.Catalog.UploadProductImage(r.Context(), claimsFrom(r.Context()), chi.URLParam(r, "id"), file, name)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toProductResponse(p))
	})
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.DeleteProduct(r.Context(), claimsFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
