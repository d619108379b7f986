package core_test

import (
	"sync"
	"testing"
	"time"

	"github.com/leandroluk/querykit/core"
	"github.com/stretchr/testify/assert"
)

func TestEventDispatcher(t *testing.T) {
	dispatcher := core.NewEventDispatcher()

	var wg sync.WaitGroup
	got := make(chan any, 2)
	wg.Add(2)
	for i := 0; i < 2; i++ {
		dispatcher.On(core.EventFind, func(payload any) {
			defer wg.Done()
			got <- payload
		})
	}
	dispatcher.On(core.EventInsert, func(payload any) {
		t.Error("insert handler must not run on find")
	})

	payload := core.FindManyPayload{Records: []core.Record{{"id": 1}}}
	dispatcher.Emit(core.EventFind, payload)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handlers did not run")
	}
	close(got)
	for p := range got {
		assert.Equal(t, payload, p)
	}
}
