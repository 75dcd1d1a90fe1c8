package cutting

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samruddhi/pipecut/internal/models"
)

func leftover(id int64, length float64) *models.Leftover {
	return &models.Leftover{ID: id, Length: length}
}

func TestClassifyScrap(t *testing.T) {
	assert.Equal(t, Usable, ClassifyScrap(350))
	assert.Equal(t, Usable, ClassifyScrap(987))
	assert.Equal(t, NotUsable, ClassifyScrap(349.99))
	assert.Equal(t, NotUsable, ClassifyScrap(0))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1200.46, Round2(1200.456))
	assert.Equal(t, 0.1, Round2(0.1+0.00000001))
}

func TestPlanSingleRawOnly(t *testing.T) {
	plan := PlanSingle(6000, 1000, 5, nil)

	require.Len(t, plan.Segments, 1)
	seg := plan.Segments[0]
	assert.Equal(t, SourceRaw, seg.Kind)
	assert.Equal(t, "Raw pipe (6000.00 mm)", seg.Source)
	assert.Equal(t, 5, seg.Pieces)
	assert.Equal(t, 985.0, seg.Remaining)

	assert.Equal(t, 5, plan.PiecesProduced)
	assert.Zero(t, plan.Shortfall)
	assert.Equal(t, 5000.0, plan.MaterialUsed)
	assert.Equal(t, 5015.0, plan.MaterialUsedInclKerf)
	assert.Equal(t, 15.0, plan.KerfTotal)
	assert.Equal(t, []float64{985}, plan.ScrapSaved)
	assert.False(t, plan.UsedLeftover)
	require.NotNil(t, plan.SuggestedRaw)
	assert.Equal(t, 985.0, *plan.SuggestedRaw)
}

func TestPlanSingleLeftoversFirst(t *testing.T) {
	inventory := []*models.Leftover{leftover(9, 1500), leftover(4, 800)}
	plan := PlanSingle(3000, 1000, 4, inventory)

	require.Len(t, plan.Segments, 3)

	assert.Equal(t, SourceLeftover, plan.Segments[0].Kind)
	assert.Equal(t, "Leftover (1500.00 mm)", plan.Segments[0].Source)
	assert.Equal(t, 1, plan.Segments[0].Pieces)
	assert.Equal(t, 497.0, plan.Segments[0].Remaining)
	require.NotNil(t, plan.Segments[0].LeftoverID)
	assert.Equal(t, int64(9), *plan.Segments[0].LeftoverID)

	assert.Equal(t, SourceRaw, plan.Segments[1].Kind)
	assert.Equal(t, 2, plan.Segments[1].Pieces)
	assert.Equal(t, 994.0, plan.Segments[1].Remaining)

	assert.Equal(t, SourceRaw, plan.Segments[2].Kind)
	assert.Equal(t, 1, plan.Segments[2].Pieces)
	assert.Equal(t, 1997.0, plan.Segments[2].Remaining)

	assert.Equal(t, 4, plan.PiecesProduced)
	assert.True(t, plan.UsedLeftover)
	assert.Equal(t, []int64{9}, plan.UsedLeftoverIDs)
	assert.Equal(t, []float64{497, 994, 1997}, plan.ScrapSaved)
	require.NotNil(t, plan.SuggestedRaw)
	assert.Equal(t, 1997.0, *plan.SuggestedRaw)

	change := plan.InventoryChanges()
	assert.Equal(t, []int64{9}, change.DeleteIDs)
	assert.Equal(t, []float64{497, 994, 1997}, change.InsertScraps)
}

func TestPlanSingleSmallScrapNotSaved(t *testing.T) {
	// 2 x 1003 from 2050 leaves 44 mm.
	plan := PlanSingle(2050, 1000, 2, nil)
	require.Len(t, plan.Segments, 1)
	assert.Equal(t, 44.0, plan.Segments[0].Remaining)
	assert.Empty(t, plan.ScrapSaved)
	require.NotNil(t, plan.SuggestedRaw)
	assert.Equal(t, 44.0, *plan.SuggestedRaw)
}

func TestPlanSingleEndsOnLeftoverHasNoSuggestion(t *testing.T) {
	plan := PlanSingle(3000, 500, 1, []*models.Leftover{leftover(2, 700)})
	require.Len(t, plan.Segments, 1)
	assert.Equal(t, SourceLeftover, plan.Segments[0].Kind)
	assert.Equal(t, 197.0, plan.Segments[0].Remaining)
	assert.Nil(t, plan.SuggestedRaw)
	assert.Equal(t, []int64{2}, plan.UsedLeftoverIDs)
}

func TestPlanSingleRawTooShort(t *testing.T) {
	plan := PlanSingle(500, 1000, 2, nil)
	assert.Empty(t, plan.Segments)
	assert.Zero(t, plan.PiecesProduced)
	assert.Equal(t, 2, plan.Shortfall)
	assert.Empty(t, plan.ScrapSaved)
	assert.True(t, plan.InventoryChanges().Empty())
}

func TestPlanSingleInvalidInput(t *testing.T) {
	for _, plan := range []*SinglePlan{
		PlanSingle(3000, 0, 5, nil),
		PlanSingle(3000, 100, 0, nil),
		PlanSingle(3000, -5, 3, nil),
	} {
		assert.Zero(t, plan.PiecesProduced)
		assert.Empty(t, plan.Segments)
		assert.Nil(t, plan.SuggestedRaw)
	}
}

func TestPlanMultiSingleRawPipe(t *testing.T) {
	plan, err := PlanMulti([]models.CutRequirement{{Length: 868, Quantity: 3}}, nil)
	require.NoError(t, err)

	require.Equal(t, 1, plan.TotalPipes)
	p := plan.Pipes[0]
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, "Raw pipe (3600 mm)", p.Label)
	assert.Equal(t, []float64{868, 868, 868}, p.Cuts)
	assert.Equal(t, 3, p.NumCuts)
	assert.Equal(t, 9.0, p.KerfMM)
	assert.Equal(t, 2613.0, p.Used)
	assert.Equal(t, 987.0, p.Scrap)
	assert.Equal(t, Usable, p.ScrapClass)
	assert.False(t, p.IsLeftover)
	assert.Nil(t, p.LeftoverID)

	assert.Equal(t, 2613.0, plan.TotalUsed)
	assert.Equal(t, 987.0, plan.TotalScrap)
	assert.Equal(t, 9.0, plan.TotalKerf)
	assert.Equal(t, StandardRawLengthMM, plan.RawLength)
	assert.True(t, plan.LastPipeOverLimit)

	change := plan.InventoryChanges()
	assert.Empty(t, change.DeleteIDs)
	assert.Equal(t, []float64{987}, change.InsertScraps)
}

func TestPlanMultiPrefersLeftovers(t *testing.T) {
	inventory := []*models.Leftover{leftover(7, 1000), leftover(3, 500)}
	plan, err := PlanMulti([]models.CutRequirement{
		{Length: 400, Quantity: 2},
		{Length: 600, Quantity: 1},
	}, inventory)
	require.NoError(t, err)

	require.Equal(t, 3, plan.TotalPipes)

	assert.Equal(t, "Leftover 1000 mm", plan.Pipes[0].Label)
	assert.Equal(t, []float64{600}, plan.Pipes[0].Cuts)
	assert.Equal(t, 397.0, plan.Pipes[0].Scrap)
	assert.Equal(t, int64(7), *plan.Pipes[0].LeftoverID)

	assert.Equal(t, "Leftover 500 mm", plan.Pipes[1].Label)
	assert.Equal(t, []float64{400}, plan.Pipes[1].Cuts)
	assert.Equal(t, 97.0, plan.Pipes[1].Scrap)
	assert.Equal(t, NotUsable, plan.Pipes[1].ScrapClass)

	assert.Equal(t, "Raw pipe (3600 mm)", plan.Pipes[2].Label)
	assert.Equal(t, []float64{400}, plan.Pipes[2].Cuts)
	assert.Equal(t, 3197.0, plan.Pipes[2].Scrap)

	assert.Equal(t, 1409.0, plan.TotalUsed)
	assert.Equal(t, 3691.0, plan.TotalScrap)
	assert.Equal(t, 9.0, plan.TotalKerf)

	change := plan.InventoryChanges()
	assert.Equal(t, []int64{7, 3}, change.DeleteIDs)
	assert.Equal(t, []float64{397, 3197}, change.InsertScraps)
}

func TestPlanMultiUsabilityGuard(t *testing.T) {
	// The second 1700 would leave 194 mm on the first pipe, turning a usable
	// remainder into an unusable one, so it opens a new pipe instead.
	plan, err := PlanMulti([]models.CutRequirement{
		{Length: 300, Quantity: 1},
		{Length: 1700, Quantity: 2},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, 2, plan.TotalPipes)
	assert.Equal(t, []float64{1700, 300}, plan.Pipes[0].Cuts)
	assert.Equal(t, 1594.0, plan.Pipes[0].Scrap)
	assert.Equal(t, []float64{1700}, plan.Pipes[1].Cuts)
	assert.Equal(t, 1897.0, plan.Pipes[1].Scrap)
}

func TestPlanMultiUnusedLeftoverStaysInPlan(t *testing.T) {
	plan, err := PlanMulti([]models.CutRequirement{{Length: 1000, Quantity: 1}},
		[]*models.Leftover{leftover(1, 200)})
	require.NoError(t, err)

	require.Equal(t, 2, plan.TotalPipes)
	assert.True(t, plan.Pipes[0].IsLeftover)
	assert.Zero(t, plan.Pipes[0].NumCuts)
	assert.Equal(t, 200.0, plan.Pipes[0].Scrap)
	assert.Equal(t, 2597.0, plan.Pipes[1].Scrap)

	change := plan.InventoryChanges()
	assert.Empty(t, change.DeleteIDs)
	assert.Equal(t, []float64{2597}, change.InsertScraps)
}

func TestPlanMultiLastPipeWithinLimit(t *testing.T) {
	plan, err := PlanMulti([]models.CutRequirement{{Length: 3597, Quantity: 1}}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, plan.TotalPipes)
	assert.Zero(t, plan.Pipes[0].Scrap)
	assert.False(t, plan.LastPipeOverLimit)
	assert.True(t, plan.InventoryChanges().Empty())
}

func TestPlanMultiCutTooLong(t *testing.T) {
	_, err := PlanMulti([]models.CutRequirement{{Length: 3598, Quantity: 1}}, nil)
	assert.True(t, errors.Is(err, ErrCutTooLong))

	// A long leftover can still take it.
	plan, err := PlanMulti([]models.CutRequirement{{Length: 3598, Quantity: 1}},
		[]*models.Leftover{leftover(5, 5000)})
	require.NoError(t, err)
	require.Equal(t, 1, plan.TotalPipes)
	assert.Equal(t, 1399.0, plan.Pipes[0].Scrap)
}

func TestPlanMultiIgnoresInvalidRequirements(t *testing.T) {
	plan, err := PlanMulti([]models.CutRequirement{{Length: 0, Quantity: 2}, {Length: 500, Quantity: 0}}, nil)
	require.NoError(t, err)
	assert.Zero(t, plan.TotalPipes)
	assert.Empty(t, plan.Pipes)
	assert.False(t, plan.LastPipeOverLimit)
}

func TestRound2Huge(t *testing.T) {
	assert.Equal(t, 1e307, Round2(1e307))
	assert.True(t, math.IsInf(Round2(math.Inf(1)), 1))
}

func TestValidLength(t *testing.T) {
	assert.True(t, ValidLength(0.01))
	assert.True(t, ValidLength(MaxLengthMM))
	assert.False(t, ValidLength(0))
	assert.False(t, ValidLength(MaxLengthMM+1))
	assert.False(t, ValidLength(1e307))
	assert.False(t, ValidLength(math.Inf(1)))
	assert.False(t, ValidLength(math.NaN()))
}

func TestPlanSingleRejectsNonFiniteLengths(t *testing.T) {
	for _, plan := range []*SinglePlan{
		PlanSingle(1e307, 1000, 1, nil),
		PlanSingle(math.Inf(1), 1000, 1, nil),
		PlanSingle(6000, math.NaN(), 1, nil),
		PlanSingle(6000, 1000, MaxPieces+1, nil),
	} {
		assert.Empty(t, plan.Segments)
		assert.Empty(t, plan.ScrapSaved)
		assert.True(t, plan.InventoryChanges().Empty())
	}
}

func TestPlanSingleSkipsNonFiniteLeftovers(t *testing.T) {
	plan := PlanSingle(6000, 1000, 1, []*models.Leftover{leftover(1, math.Inf(1))})
	require.Len(t, plan.Segments, 1)
	assert.Equal(t, SourceRaw, plan.Segments[0].Kind)
	assert.Empty(t, plan.UsedLeftoverIDs)
}

func TestPlanMultiRejectsInvalidLengths(t *testing.T) {
	for _, length := range []float64{1e307, math.Inf(1), math.NaN(), MaxLengthMM + 1} {
		_, err := PlanMulti([]models.CutRequirement{{Length: length, Quantity: 1}}, nil)
		assert.ErrorIs(t, err, ErrInvalidLength, "length %v", length)
	}

	plan, err := PlanMulti([]models.CutRequirement{{Length: 500, Quantity: 1}},
		[]*models.Leftover{leftover(3, math.Inf(1))})
	require.NoError(t, err)
	require.Equal(t, 1, plan.TotalPipes)
	assert.False(t, plan.Pipes[0].IsLeftover)
}

func TestPlanMultiPieceLimit(t *testing.T) {
	_, err := PlanMulti([]models.CutRequirement{{Length: 500, Quantity: 2000000000}}, nil)
	assert.ErrorIs(t, err, ErrTooManyPieces)

	_, err = PlanMulti([]models.CutRequirement{
		{Length: 500, Quantity: MaxPieces},
		{Length: 400, Quantity: 1},
	}, nil)
	assert.ErrorIs(t, err, ErrTooManyPieces)

	plan, err := PlanMulti([]models.CutRequirement{{Length: 100, Quantity: MaxPieces}}, nil)
	require.NoError(t, err)
	assert.NotZero(t, plan.TotalPipes)
}
