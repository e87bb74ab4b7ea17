package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/dimitrije/relayo-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCustomerTest(t *testing.T) (*testutil.MockCustomerService, *testutil.MockMessageService, http.Handler, *testutil.StaticProvisioner) {
	t.Helper()
	mockCustomerService := new(testutil.MockCustomerService)
	mockMessageService := new(testutil.MockMessageService)
	handler := NewCustomerHandler(mockCustomerService, mockMessageService)

	app, provisioner := newTestApp(t,
		testRoute{http.MethodGet, "/customers", handler.List},
		testRoute{http.MethodPost, "/customers", handler.Create},
		testRoute{http.MethodGet, "/customers/:customerId/messages", handler.Messages},
	)
	return mockCustomerService, mockMessageService, app, provisioner
}

func TestCustomerHandler_List_Success(t *testing.T) {
	mockCustomerService, _, app, provisioner := setupCustomerTest(t)
	wsID := provisioner.Workspace.ID

	customers := []models.Customer{
		{ID: uuid.New(), WorkspaceID: wsID, Name: strPtr("Jane Doe"), Phone: strPtr("+15550101")},
	}
	mockCustomerService.On("List", mock.Anything, wsID, "jane").Return(customers, nil)

	rec := doRequest(t, app, http.MethodGet, "/customers?search=jane", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []models.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "Jane Doe", *response[0].Name)

	mockCustomerService.AssertExpectations(t)
}

func TestCustomerHandler_List_EmptyIsArray(t *testing.T) {
	mockCustomerService, _, app, provisioner := setupCustomerTest(t)

	mockCustomerService.On("List", mock.Anything, provisioner.Workspace.ID, "").Return(nil, nil)

	rec := doRequest(t, app, http.MethodGet, "/customers", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCustomerHandler_List_Unauthenticated(t *testing.T) {
	mockCustomerService, _, app, _ := setupCustomerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	mockCustomerService.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerHandler_Create_Success(t *testing.T) {
	mockCustomerService, _, app, provisioner := setupCustomerTest(t)
	wsID := provisioner.Workspace.ID

	input := services.CustomerInput{
		Name:  strPtr("Jane Doe"),
		Phone: strPtr("+15550101"),
	}
	created := &models.Customer{ID: uuid.New(), WorkspaceID: wsID, Name: input.Name, Phone: input.Phone}
	mockCustomerService.On("Create", mock.Anything, wsID, input).Return(created, nil)

	rec := doRequest(t, app, http.MethodPost, "/customers", map[string]string{
		"name":  " Jane Doe ",
		"phone": "+15550101",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response models.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, created.ID, response.ID)

	mockCustomerService.AssertExpectations(t)
}

func TestCustomerHandler_Create_DuplicatePhone(t *testing.T) {
	mockCustomerService, _, app, provisioner := setupCustomerTest(t)

	mockCustomerService.On("Create", mock.Anything, provisioner.Workspace.ID, mock.Anything).
		Return(nil, services.ErrCustomerExists)

	rec := doRequest(t, app, http.MethodPost, "/customers", map[string]string{
		"name":  "Jane Again",
		"phone": "+15550101",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestCustomerHandler_Create_Validation(t *testing.T) {
	testCases := map[string]struct {
		body    map[string]string
		message string
	}{
		"no contact":    {map[string]string{"name": "Jane"}, "phone or email is required"},
		"bad phone":     {map[string]string{"phone": "555-0101"}, "phone must be an E.164 phone number"},
		"bad email":     {map[string]string{"email": "not-an-email"}, "email must be a valid email"},
		"blank contact": {map[string]string{"phone": "", "email": ""}, "phone or email is required"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			mockCustomerService, _, app, _ := setupCustomerTest(t)

			rec := doRequest(t, app, http.MethodPost, "/customers", tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.message)
			mockCustomerService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCustomerHandler_Create_StoreError(t *testing.T) {
	mockCustomerService, _, app, _ := setupCustomerTest(t)

	mockCustomerService.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	rec := doRequest(t, app, http.MethodPost, "/customers", map[string]string{"email": "jane@example.com"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestCustomerHandler_Messages_Success(t *testing.T) {
	mockCustomerService, mockMessageService, app, provisioner := setupCustomerTest(t)
	wsID := provisioner.Workspace.ID
	customerID := uuid.New()

	mockCustomerService.On("GetByID", mock.Anything, wsID, customerID).
		Return(&models.Customer{ID: customerID, WorkspaceID: wsID}, nil)
	mockMessageService.On("ListByCustomer", mock.Anything, wsID, customerID).Return([]models.Message{
		{ID: uuid.New(), Direction: models.DirectionInbound, Body: "hi", CreatedAt: time.Now()},
		{ID: uuid.New(), Direction: models.DirectionOutbound, Body: "hello", CreatedAt: time.Now()},
	}, nil)

	rec := doRequest(t, app, http.MethodGet, "/customers/"+customerID.String()+"/messages", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 2)
	assert.Equal(t, "hi", response[0].Body)

	mockCustomerService.AssertExpectations(t)
	mockMessageService.AssertExpectations(t)
}

func TestCustomerHandler_Messages_NotOwned(t *testing.T) {
	mockCustomerService, mockMessageService, app, provisioner := setupCustomerTest(t)
	customerID := uuid.New()

	mockCustomerService.On("GetByID", mock.Anything, provisioner.Workspace.ID, customerID).
		Return(nil, services.ErrCustomerNotFound)

	rec := doRequest(t, app, http.MethodGet, "/customers/"+customerID.String()+"/messages", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	mockMessageService.AssertNotCalled(t, "ListByCustomer", mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerHandler_Messages_InvalidID(t *testing.T) {
	_, _, app, _ := setupCustomerTest(t)

	rec := doRequest(t, app, http.MethodGet, "/customers/not-a-uuid/messages", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid customer id")
}
