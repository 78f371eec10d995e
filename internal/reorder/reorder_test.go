package reorder

import (
	"errors"
	"regexp"
	"testing"

	"github.com/piwi3910/cutdesk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	materials []model.Material
	err       error
}

func (f fakeCatalog) List() ([]model.Material, error) {
	return f.materials, f.err
}

func catalog() fakeCatalog {
	return fakeCatalog{materials: []model.Material{
		{ID: "1", Name: "2x4 Pine", UnitCost: 3.5, CurrentStock: 100, ReorderThreshold: 200, Supplier: "Lumber Supply Co."},
		{ID: "2", Name: "2x6 Pine", UnitCost: 5.25, CurrentStock: 250, ReorderThreshold: 200, Supplier: "Lumber Supply Co."},
		{ID: "3", Name: "Steel Rod", UnitCost: 12, CurrentStock: 90, ReorderThreshold: 100, Supplier: "Metal Works Inc."},
		{ID: "4", Name: "Oak Board", UnitCost: 8, CurrentStock: 10, ReorderThreshold: 40, Supplier: "Lumber Supply Co."},
	}}
}

var poNumber = regexp.MustCompile(`^PO-\d{6}-[A-Z0-9]{3}$`)

func TestAlerts(t *testing.T) {
	e := New(catalog(), "", nil)

	alerts, err := e.Alerts()
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, "1", alerts[0].MaterialID)
	assert.Equal(t, model.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, model.SeverityLow, alerts[1].Severity)

	ids, err := e.LowStockIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", "4"}, ids)
}

func TestAlertsCatalogError(t *testing.T) {
	e := New(fakeCatalog{err: errors.New("boom")}, "", nil)
	_, err := e.Alerts()
	assert.Error(t, err)
	_, err = e.PlanAlerts()
	assert.Error(t, err)
}

func TestPlanAlertsGroupsBySupplier(t *testing.T) {
	e := New(catalog(), "", nil)

	orders, err := e.PlanAlerts()
	require.NoError(t, err)
	require.Len(t, orders, 2)

	lumber := orders[0]
	assert.Equal(t, "Lumber Supply Co.", lumber.Supplier)
	require.Len(t, lumber.Items, 2)
	assert.Equal(t, 400.0, lumber.Items[0].SuggestedQuantity)
	assert.Equal(t, 1400.0, lumber.Items[0].TotalCost)
	assert.Equal(t, 80.0, lumber.Items[1].SuggestedQuantity)
	assert.Equal(t, 2040.0, lumber.TotalCost)
	assert.True(t, lumber.Urgent())

	assert.Equal(t, "Metal Works Inc.", orders[1].Supplier)
	assert.Equal(t, 2400.0, orders[1].TotalCost)

	for _, o := range orders {
		assert.Regexp(t, poNumber, o.Number)
	}
	assert.NotEqual(t, orders[0].Number, orders[1].Number)
}

func TestBulkReorder(t *testing.T) {
	e := New(catalog(), "SECRET", nil)

	orders, err := e.BulkReorder([]string{"2", "3", "2"}, " SECRET ")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "Lumber Supply Co.", orders[0].Supplier)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "2", orders[0].Items[0].Material.ID)
	assert.Equal(t, 400.0, orders[0].Items[0].SuggestedQuantity)
}

func TestBulkReorderRejections(t *testing.T) {
	e := New(catalog(), "", nil)

	_, err := e.BulkReorder(nil, DefaultManagerCode)
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "select materials to reorder", ve.Message)

	_, err = e.BulkReorder([]string{"1"}, "manager2024")
	var ae *model.AuthorizationError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, MsgIncorrectManagerCode, ae.Error())

	_, err = e.BulkReorder([]string{"1", "99"}, DefaultManagerCode)
	var nf *model.NotFoundError
	assert.True(t, errors.As(err, &nf))
}
