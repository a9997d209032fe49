package rules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/daoerrors"
	"daocore/rules"
)

func TestBuilder_Validate_PassesWhenAllRulesHold(t *testing.T) {
	err := rules.New().
		Add(rules.IsUserKyced(true)).
		Add(rules.IsVa(true)).
		Validate()
	require.NoError(t, err)
}

func TestBuilder_Validate_ShortCircuitsOnFirstFailure(t *testing.T) {
	err := rules.New().
		Add(rules.IsUserKyced(false)).
		Add(rules.CanBidOnOwnJob(true)).
		Validate()
	require.Error(t, err)

	var derr *daoerrors.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, daoerrors.CodeNotWhitelisted, derr.Code)
}

func TestBuilder_Validate_SecondRuleCanFailIndependently(t *testing.T) {
	err := rules.New().
		Add(rules.IsUserKyced(true)).
		Add(rules.CanBidOnOwnJob(true)).
		Validate()
	require.Error(t, err)

	var derr *daoerrors.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, daoerrors.CodeCannotBidOnOwnJob, derr.Code)
}
