package api

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
	"github.com/ha1tch/flowchart-toolkit/pkg/store"
)

func TestClientRoundTrip(t *testing.T) {
	_, srv := newTestApi(t)
	c := NewClient(srv.URL + "/api/")
	ctx := context.Background()

	d, err := c.Save(ctx, "Client test", flow.InitialFlow(), "<svg/>")
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.ID)

	got, err := c.Get(ctx, d.ID)
	require.NoError(t, err)
	f, err := got.Flow()
	require.NoError(t, err)
	assert.Len(t, f.Edges, 1)

	desc := "described"
	u, err := c.Update(ctx, d.ID, store.UpdateRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Client test", u.Name)
	require.NotNil(t, u.Description)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	data, name, err := c.ExportSVG(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
	assert.Equal(t, "Client_test_diagram.svg", name)

	render, err := c.Routes(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, render.Connectors, 1)

	require.NoError(t, c.Delete(ctx, d.ID))
	_, err = c.Get(ctx, d.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.Status)
}

func TestClientInvalid(t *testing.T) {
	_, srv := newTestApi(t)
	c := NewClient(srv.URL + "/api")
	_, err := c.Create(context.Background(), store.CreateRequest{Name: ""})
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func TestNewClientDefault(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("").BaseURL)
}
