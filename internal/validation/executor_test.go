package validation

import (
	"context"
	"errors"
	"testing"

	"gostatcheck/domain/core"
	"gostatcheck/internal/records"
	"gostatcheck/internal/statcheck"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInputs() []records.TestInput {
	return []records.TestInput{
		{TestType: "t", DF1: "30", TestValue: "1.96", Operator: "=", ReportedPValue: ".059"},
		{TestType: "t", DF1: "30", TestValue: "1.96", Operator: "=", ReportedPValue: "0"},
		{TestType: "r", DF1: "30", TestValue: "1.2", Operator: "=", ReportedPValue: ".05"},
		{TestType: "f", DF1: "3", DF2: "15", TestValue: "4.5", Operator: "=", ReportedPValue: ".019"},
		{TestType: "chi2", DF1: "4", TestValue: "7.15", Operator: "=", ReportedPValue: ".20"},
	}
}

// TestCheckTestsKeepsOrderAndIsolatesFailures verifies bad records do not stop the batch
func TestCheckTestsKeepsOrderAndIsolatesFailures(t *testing.T) {
	checker, err := statcheck.NewChecker(0.05)
	require.NoError(t, err)

	for _, workers := range []int{1, 3, 16} {
		outcomes, err := NewExecutor(workers).CheckTests(context.Background(), checker, testInputs())
		require.NoError(t, err)
		require.Len(t, outcomes, 5)

		for i, o := range outcomes {
			assert.Equal(t, i, o.Index)
		}

		require.NotNil(t, outcomes[0].Verdict)
		assert.True(t, outcomes[0].Verdict.Consistent)

		assert.Nil(t, outcomes[1].Verdict)
		assert.True(t, errors.Is(outcomes[1].Err, core.ErrInvalidInputRecord))
		assert.Equal(t, "invalid_input_record", outcomes[1].ErrorKind)
		var recErr *core.RecordError
		require.True(t, errors.As(outcomes[1].Err, &recErr))
		assert.Equal(t, 1, recErr.Index)

		assert.True(t, errors.Is(outcomes[2].Err, core.ErrNumericDomain))
		assert.Equal(t, "numeric_domain", outcomes[2].ErrorKind)

		require.NotNil(t, outcomes[3].Verdict)
		assert.True(t, outcomes[3].Verdict.Consistent)

		require.NotNil(t, outcomes[4].Verdict)
		assert.False(t, outcomes[4].Verdict.Consistent)
	}
}

// TestCheckTestsCancelled verifies a done context schedules nothing
func TestCheckTestsCancelled(t *testing.T) {
	checker, err := statcheck.NewChecker(0.05)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := NewExecutor(2).CheckTests(ctx, checker, testInputs())
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, outcomes, 5)
	for i, o := range outcomes {
		assert.Equal(t, i, o.Index)
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
}

// TestCheckMeans verifies GRIM outcomes line up with their inputs
func TestCheckMeans(t *testing.T) {
	inputs := []records.MeanInput{
		{ReportedMean: "5.22", SampleSize: "9"},
		{ReportedMean: "5.20", SampleSize: "9"},
		{ReportedMean: "5.20", SampleSize: "0"},
	}

	outcomes, err := NewExecutor(0).CheckMeans(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	require.NotNil(t, outcomes[0].Verdict)
	assert.True(t, outcomes[0].Verdict.Consistent)
	require.NotNil(t, outcomes[1].Verdict)
	assert.False(t, outcomes[1].Verdict.Consistent)
	assert.True(t, errors.Is(outcomes[2].Err, core.ErrInvalidInputRecord))
	assert.Greater(t, NewExecutor(0).Workers(), 0)
}
