package dxs

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQueryRepeatsParamInOrder(t *testing.T) {

	assert := assert.New(t)

	for _, ids := range []IdSet{PrimaryEntries(), ExtendedEntries(), BatteryEntries(), {"1"}} {
		q := BuildQuery(ids)
		assert.Equal(len(ids), strings.Count(q, DXS_QUERY_PARAM+"="), "one occurrence per id")

		values, err := url.ParseQuery(q)
		require.NoError(t, err)
		assert.Equal([]string(ids), values[DXS_QUERY_PARAM], "ids keep their order")
	}
}

func TestBuildQueryBatteryGroup(t *testing.T) {

	assert.Equal(t, "dxsEntries=33556226&dxsEntries=33556229", BuildQuery(BatteryEntries()))
}

func TestBuildQueryEscapesIds(t *testing.T) {

	assert.Equal(t, "dxsEntries=a%26b", BuildQuery(IdSet{"a&b"}))
}
