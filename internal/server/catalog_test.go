package server

import (
	"net/http"
	"testing"

	containerdomain "github.com/smallbiznis/birracraft/internal/container/domain"
	customerdomain "github.com/smallbiznis/birracraft/internal/customer/domain"
	productdomain "github.com/smallbiznis/birracraft/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/customer", map[string]any{
		"name":      "Bar El Tano",
		"address":   "Corrientes 1234",
		"email":     "tano@bar.test",
		"cellphone": "1144443333",
		"type":      "Comerce",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[customerdomain.Customer](t, rec)
	id := created.ID.String()
	assert.Equal(t, customerdomain.TypeComerce, created.Type)

	rec = ts.do(http.MethodPatch, "/api/customer/"+id, map[string]any{"address": "Corrientes 99"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[customerdomain.Customer](t, rec)
	assert.Equal(t, "Corrientes 99", patched.Address)
	assert.Equal(t, "Bar El Tano", patched.Name)

	rec = ts.do(http.MethodDelete, "/api/customer/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200}`, rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/customer/"+id, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomerValidationError(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/customer", map[string]any{
		"name":      "Bar",
		"address":   "Corrientes 1234",
		"email":     "not-an-email",
		"cellphone": "1144443333",
		"type":      "Particular",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.Equal(t, "validation_error", body.Error.Type)
	require.Len(t, body.Error.Errors, 1)
	assert.Equal(t, "email", body.Error.Errors[0].Field)
	assert.Equal(t, "invalid_email", body.Error.Errors[0].Code)
}

func TestPutRequiresEveryField(t *testing.T) {
	ts := newTestServer(t)
	customer := ts.seed.Customer("Juan")

	rec := ts.do(http.MethodPut, "/api/customer/"+customer.ID.String(), map[string]any{"name": "Juan Perez"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResponse](t, rec)
	require.Len(t, body.Error.Errors, 1)
	assert.Equal(t, "address", body.Error.Errors[0].Field)
	assert.Equal(t, "required", body.Error.Errors[0].Code)
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/flavour", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.Equal(t, "invalid_request", body.Error.Errors[0].Code)
}

func TestSelectLitersRendersNumbers(t *testing.T) {
	ts := newTestServer(t)
	keg := ts.seed.Container(containerdomain.TypeKeg, "30")

	rec := ts.do(http.MethodGet, "/api/container/"+keg.ID.String()+"/select_lts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":"Keg","liters":[20,30,50]}`, rec.Body.String())
}

func TestFlavourCreateAcceptsNumericPrice(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/flavour", `{"name":"IPA","description":"hoppy","price_per_lt":6.8}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "6.80", body["price_per_lt"])
}

func TestProductListFilters(t *testing.T) {
	ts := newTestServer(t)
	keg := ts.seed.Container(containerdomain.TypeKeg, "20")
	growler := ts.seed.Container(containerdomain.TypeGrowler, "2")
	ipa := ts.seed.Flavour("IPA", "6.80")
	ts.seed.Product("K1", keg, ipa)
	ts.seed.Product("G1", growler, ipa)

	rec := ts.do(http.MethodGet, "/api/product?container="+growler.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[[]productdomain.Response](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "G1", products[0].Code)
}

func TestContainerDeleteRemovesProducts(t *testing.T) {
	ts := newTestServer(t)
	keg := ts.seed.Container(containerdomain.TypeKeg, "20")
	ipa := ts.seed.Flavour("IPA", "6.80")
	ts.seed.Product("K1", keg, ipa)

	rec := ts.do(http.MethodDelete, "/api/container/"+keg.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200}`, rec.Body.String())
	assert.Zero(t, ts.seed.Count(&productdomain.Product{}))
}
