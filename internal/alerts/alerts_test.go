package alerts

import (
	"bytes"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/dsyorkd/assisted-console/internal/logger"
)

func TestList(t *testing.T) {
	t.Run("should collect and clear alerts", func(t *testing.T) {
		list := NewList()
		list.Add(Alert{Title: "Failed to create new cluster", Message: "boom"})
		list.Add(Alert{Title: "heads up", Variant: VariantInfo})

		got := list.Alerts()
		assert.Len(t, got, 2)
		assert.Equal(t, VariantDanger, got[0].Variant)
		assert.Equal(t, VariantInfo, got[1].Variant)

		list.Clear()
		assert.Equal(t, 0, list.Len())
	})

	t.Run("should accept concurrent writers", func(t *testing.T) {
		list := NewList()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				list.Add(Alert{Title: "x"})
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, list.Len())
	})
}

func TestLogDispatcher(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	var d Dispatcher = NewLogDispatcher(logger.FromLogrus(base))
	d.Add(Alert{Title: "Could not download host logs.", Message: "not found"})
	d.Clear()

	assert.Contains(t, buf.String(), "level=error")
	assert.Contains(t, buf.String(), "Could not download host logs.")
	assert.Contains(t, buf.String(), "not found")
}
