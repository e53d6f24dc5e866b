package http

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/rentals/internal/tasks"
)

type stubTaskQueue struct {
	enqueued []backlite.Task
	status   backlite.TaskStatus
	err      error
}

func (q *stubTaskQueue) Enqueue(task backlite.Task) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, task)
	return "task-1", nil
}

func (q *stubTaskQueue) Status(context.Context, string) (backlite.TaskStatus, error) {
	return q.status, q.err
}

func TestTasksController(t *testing.T) {
	t.Run("lists task types", func(t *testing.T) {
		router := NewRouter(RouterConfig{TaskQueue: &stubTaskQueue{}})

		w := doJSON(router, "GET", "/api/tasks/types", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "reconcile_index")
		assert.Contains(t, w.Body.String(), "cleanup_orphan_categories")
	})

	t.Run("enqueues a property reindex", func(t *testing.T) {
		queue := &stubTaskQueue{}
		router := NewRouter(RouterConfig{TaskQueue: queue})

		w := doJSON(router, "POST", "/api/tasks/run/reindex_property", map[string]any{"property_id": 7})

		assert.Equal(t, http.StatusAccepted, w.Code)
		require.Len(t, queue.enqueued, 1)
		assert.Equal(t, tasks.ReindexPropertyTask{PropertyID: 7}, queue.enqueued[0])
	})

	t.Run("reindex requires a property id", func(t *testing.T) {
		queue := &stubTaskQueue{}
		router := NewRouter(RouterConfig{TaskQueue: queue})

		w := doJSON(router, "POST", "/api/tasks/run/reindex_property", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, queue.enqueued)
	})

	t.Run("unknown type", func(t *testing.T) {
		router := NewRouter(RouterConfig{TaskQueue: &stubTaskQueue{}})

		w := doJSON(router, "POST", "/api/tasks/run/enrich_book", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reports status", func(t *testing.T) {
		router := NewRouter(RouterConfig{TaskQueue: &stubTaskQueue{status: backlite.TaskStatusSuccess}})

		w := doJSON(router, "GET", "/api/tasks/task-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"success"`)
	})

	t.Run("enqueue failure is a 500", func(t *testing.T) {
		router := NewRouter(RouterConfig{TaskQueue: &stubTaskQueue{err: errors.New("disk full")}})

		w := doJSON(router, "POST", "/api/tasks/run/reconcile_index", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestTasksController_UnknownTaskID(t *testing.T) {
	router := NewRouter(RouterConfig{TaskQueue: &stubTaskQueue{status: backlite.TaskStatusNotFound}})

	w := doJSON(router, "GET", "/api/tasks/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
