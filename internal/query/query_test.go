package query

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/todo/internal/domain"
	"github.com/tgienger/todo/internal/models"
)

func ptr[T any](v T) *T { return &v }

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: "1", Title: "Apple pie", Status: models.StatusPending, Priority: models.PriorityHigh, ListID: ptr("home")},
		{ID: "2", Title: "banana bread", Status: models.StatusCompleted, Priority: models.PriorityLow},
		{ID: "3", Title: "Call mom", Description: "About the BAKERY", Status: models.StatusPending, Priority: models.PriorityMedium, ListID: ptr("family")},
		{ID: "4", Title: "Gym", Status: models.StatusCancelled, Priority: models.PriorityHigh, ListID: ptr("home")},
		{ID: "5", Title: "Taxes", Status: models.StatusPending, Priority: models.PriorityLow},
	}
}

func ids(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestFilter_DefaultReturnsInputUnchanged(t *testing.T) {
	tasks := sampleTasks()

	for _, p := range []Params{Default(), {}} {
		got := Filter(tasks, p)
		if diff := cmp.Diff(tasks, got); diff != "" {
			t.Fatalf("default filter changed the sequence (-want +got):\n%s", diff)
		}
	}
}

func TestFilter_SearchIsCaseInsensitive(t *testing.T) {
	tasks := []models.Task{
		{ID: "apple", Title: "Apple", Status: models.StatusPending},
		{ID: "banana", Title: "banana", Status: models.StatusPending},
		{ID: "cherry", Title: "Cherry", Status: models.StatusPending},
	}

	got := Filter(tasks, Params{Search: "a", Status: All, Priority: All, ListID: nil})
	assert.Equal(t, []string{"apple", "banana"}, ids(got))

	got = Filter(tasks, Params{Search: "APP"})
	assert.Equal(t, []string{"apple"}, ids(got))
}

func TestFilter_SearchMatchesDescription(t *testing.T) {
	got := Filter(sampleTasks(), Params{Search: "bakery"})
	assert.Equal(t, []string{"3"}, ids(got))
}

func TestFilter_Predicates(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want []string
	}{
		{"list", Params{ListID: ptr("home")}, []string{"1", "4"}},
		{"unknown list", Params{ListID: ptr("nowhere")}, []string{}},
		{"status", Params{Status: "pending"}, []string{"1", "3", "5"}},
		{"status persian", Params{Status: "تکمیل شده"}, []string{"2"}},
		{"status all uppercase", Params{Status: "ALL", Priority: "all"}, []string{"1", "2", "3", "4", "5"}},
		{"unknown status", Params{Status: "done"}, []string{}},
		{"priority", Params{Priority: "high"}, []string{"1", "4"}},
		{"and of all", Params{Search: "a", ListID: ptr("home"), Status: "pending", Priority: "high"}, []string{"1"}},
		{"and excludes", Params{ListID: ptr("home"), Priority: "low"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sampleTasks(), tt.p)))
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	params := []Params{
		Default(),
		{Search: "a"},
		{Status: "pending", Priority: "low"},
		{ListID: ptr("home"), Search: "gym"},
	}

	for _, p := range params {
		once := Filter(sampleTasks(), p)
		twice := Filter(once, p)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("filter not idempotent for %+v (-once +twice):\n%s", p, diff)
		}
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	tasks := sampleTasks()
	_ = Filter(tasks, Params{Status: "completed"})
	assert.Equal(t, sampleTasks(), tasks)
}

func TestGroup(t *testing.T) {
	c := Group(sampleTasks())
	assert.Equal(t, []string{"1", "3", "5"}, ids(c.Pending))
	assert.Equal(t, []string{"2"}, ids(c.Completed))
}

func TestParamsFromValues(t *testing.T) {
	v, err := url.ParseQuery("search=milk&list_id=home&status=pending&priority=")
	require.NoError(t, err)

	p, err := ParamsFromValues(v)
	require.NoError(t, err)
	assert.Equal(t, "milk", p.Search)
	require.NotNil(t, p.ListID)
	assert.Equal(t, "home", *p.ListID)
	assert.Equal(t, "pending", p.Status)
	assert.Equal(t, All, p.Priority)

	p, err = ParamsFromValues(url.Values{})
	require.NoError(t, err)
	assert.True(t, p.IsDefault())
}

func TestParamsFromValues_Unknown(t *testing.T) {
	for _, raw := range []string{"status=bogus", "priority=urgent", "status=all&priority=xx"} {
		v, err := url.ParseQuery(raw)
		require.NoError(t, err)

		_, err = ParamsFromValues(v)
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}

	v := url.Values{"status": {"تکمیل شده"}, "priority": {"ALL"}}
	p, err := ParamsFromValues(v)
	require.NoError(t, err)
	assert.Equal(t, "ALL", p.Priority)
}

func TestParamsValuesRoundTrip(t *testing.T) {
	p := Params{Search: "x", ListID: ptr("l"), Status: "completed", Priority: All}
	back, err := ParamsFromValues(p.Values())
	require.NoError(t, err)
	assert.Equal(t, p, back)

	assert.Empty(t, Default().Values())
	assert.False(t, p.IsDefault())
}
