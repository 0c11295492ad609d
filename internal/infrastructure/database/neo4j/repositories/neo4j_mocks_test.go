package repositories

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/mock"

	infraNeo4j "github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/database/neo4j"
)

// MockInfraDriver implements infraNeo4j.DriverInterface, routing transaction
// work to a shared mock transaction.
type MockInfraDriver struct {
	mock.Mock
	tx *MockInfraTransaction
}

func (m *MockInfraDriver) ExecuteRead(ctx context.Context, work infraNeo4j.TransactionWork) (any, error) {
	args := m.Called(ctx, work)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return work(m.tx)
}

func (m *MockInfraDriver) ExecuteWrite(ctx context.Context, work infraNeo4j.TransactionWork) (any, error) {
	args := m.Called(ctx, work)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return work(m.tx)
}

func (m *MockInfraDriver) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockInfraTransaction implements infraNeo4j.Transaction.
type MockInfraTransaction struct {
	mock.Mock
}

func (m *MockInfraTransaction) Run(ctx context.Context, cypher string, params map[string]any) (infraNeo4j.Result, error) {
	args := m.Called(ctx, cypher, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(infraNeo4j.Result), args.Error(1)
}

// MockResult implements infraNeo4j.Result over a fixed record slice.
type MockResult struct {
	Records []*neo4j.Record
	Current int
}

func (m *MockResult) Next(ctx context.Context) bool {
	return m.Current < len(m.Records)
}

func (m *MockResult) Record() *neo4j.Record {
	if m.Current < len(m.Records) {
		rec := m.Records[m.Current]
		m.Current++
		return rec
	}
	return nil
}

func (m *MockResult) Err() error {
	return nil
}

func (m *MockResult) Consume(ctx context.Context) (neo4j.ResultSummary, error) {
	return nil, nil
}

func NewRecord(keys []string, values []any) *neo4j.Record {
	return &neo4j.Record{
		Keys:   keys,
		Values: values,
	}
}

// SetupMockDriver wires a driver mock whose transactions are served by the
// returned transaction mock.
func SetupMockDriver(t *testing.T) (*MockInfraDriver, *MockInfraTransaction) {
	t.Helper()
	tx := new(MockInfraTransaction)
	d := &MockInfraDriver{tx: tx}
	d.On("ExecuteRead", mock.Anything, mock.Anything).Return(nil)
	d.On("ExecuteWrite", mock.Anything, mock.Anything).Return(nil)
	return d, tx
}
