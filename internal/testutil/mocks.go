// Package testutil provides shared test doubles for the optimizer packages.
package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/StructKit/beso-go/pkg/core"
)

// MockEngine is a mock implementation of core.AnalysisEngine.
type MockEngine struct {
	mock.Mock

	mu sync.Mutex
	// ScaleCalls records every ScaleMemberStiffness invocation in order.
	ScaleCalls []ScaleCall
}

// ScaleCall is one recorded stiffness attenuation.
type ScaleCall struct {
	ID     int
	Factor float64
}

func (m *MockEngine) LoadTopology(t core.Topology) error {
	args := m.Called(t)
	return args.Error(0)
}

func (m *MockEngine) ScaleMemberStiffness(id int, factor float64) error {
	m.mu.Lock()
	m.ScaleCalls = append(m.ScaleCalls, ScaleCall{ID: id, Factor: factor})
	m.mu.Unlock()

	args := m.Called(id, factor)
	return args.Error(0)
}

func (m *MockEngine) Solve(ctx context.Context) (*core.Solution, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Solution), args.Error(1)
}

// Scaled returns the recorded attenuations as a copy.
func (m *MockEngine) Scaled() []ScaleCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ScaleCall(nil), m.ScaleCalls...)
}

// SolutionWithForces builds a solution reporting a single scalar axial
// force per member ID.
func SolutionWithForces(forces map[int]float64) *core.Solution {
	sol := &core.Solution{Forces: make(map[int]core.MemberForce, len(forces))}
	for id, f := range forces {
		sol.Forces[id] = core.MemberForce{Axial: []float64{f}}
	}
	return sol
}

// CaptureSink collects iteration reports for assertions.
type CaptureSink struct {
	mu      sync.Mutex
	Reports []*core.IterationReport
}

func (c *CaptureSink) Report(r *core.IterationReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Reports = append(c.Reports, r)
}

// All returns the collected reports as a copy.
func (c *CaptureSink) All() []*core.IterationReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*core.IterationReport(nil), c.Reports...)
}

// Last returns the most recent report, or nil.
func (c *CaptureSink) Last() *core.IterationReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Reports) == 0 {
		return nil
	}
	return c.Reports[len(c.Reports)-1]
}
