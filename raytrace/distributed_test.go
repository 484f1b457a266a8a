package raytrace

import (
	"context"
	"math"
	"testing"
)

func TestCoordinatorSingleWorkerMatchesSharedMemory(t *testing.T) {
	sc := flatBlobScenery()

	coordSide, workerSide := NewInProcessPair()
	done := make(chan error, 1)
	go func() { done <- RunWorker(workerSide, 0, sc) }()

	got, err := Coordinator([]Worker{coordSide}, sc, 0, 7, 0, 7)
	if err != nil {
		t.Fatalf("Coordinator: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("RunWorker: %v", err)
	}

	want, err := RayTrace(context.Background(), sc, 0, 7, 0, 7)
	if err != nil {
		t.Fatalf("reference RayTrace: %v", err)
	}

	for i := range want.Intensity {
		a, b := want.Intensity[i], got.Intensity[i]
		if math.IsNaN(a) != math.IsNaN(b) {
			t.Fatalf("pixel %d: NaN mismatch between shared-memory and distributed results", i)
		}
		if !math.IsNaN(a) && a != b {
			t.Errorf("pixel %d: distributed Intensity %g != shared-memory Intensity %g", i, b, a)
		}
	}
}
