package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2bid/bidding-backend/internal/models"
)

func makeBid(price float64, deliveryDays int) models.Bid {
	return models.Bid{
		ID:           uuid.New(),
		ProjectID:    uuid.New(),
		SupplierID:   uuid.New(),
		Price:        price,
		DeliveryDays: deliveryDays,
		Status:       models.BidStatusSubmitted,
	}
}

func TestComposite_Fixtures(t *testing.T) {
	ss := SubScores{Price: 85, Delivery: 90, Quality: 88}

	composite, err := Composite(ss, Weights{Price: 40, Delivery: 30, Quality: 30})
	require.NoError(t, err)
	assert.InDelta(t, 87.4, composite, 1e-9)

	shifted, err := Composite(ss, Weights{Price: 50, Delivery: 25, Quality: 25})
	require.NoError(t, err)
	assert.InDelta(t, 87.0, shifted, 1e-9)

	// До округления результаты различаются, хотя оба округляются до 87.
	assert.NotEqual(t, composite, shifted)
}

func TestComposite_NormalizesByActualSum(t *testing.T) {
	ss := SubScores{Price: 85, Delivery: 90, Quality: 88}

	base, err := Composite(ss, Weights{Price: 40, Delivery: 30, Quality: 30})
	require.NoError(t, err)

	// Удвоенные веса дают тот же результат: нормализация по фактической сумме.
	doubled, err := Composite(ss, Weights{Price: 80, Delivery: 60, Quality: 60})
	require.NoError(t, err)
	assert.InDelta(t, base, doubled, 1e-9)
}

func TestComposite_InvalidWeights(t *testing.T) {
	ss := SubScores{Price: 50, Delivery: 50, Quality: 50}

	_, err := Composite(ss, Weights{})
	assert.ErrorIs(t, err, ErrZeroWeightSum)

	_, err = Composite(ss, Weights{Price: -10, Delivery: 60, Quality: 50})
	assert.ErrorIs(t, err, ErrNegativeWeight)
}

func TestScore_WithinRange(t *testing.T) {
	bids := []models.Bid{
		makeBid(100000, 7),
		makeBid(250000, 30),
		makeBid(180000, 14),
	}
	bounds := BoundsFor(bids)

	weightSets := []Weights{
		{Price: 40, Delivery: 30, Quality: 30},
		{Price: 100, Delivery: 0, Quality: 0},
		{Price: 0, Delivery: 0, Quality: 100},
		{Price: 33, Delivery: 33, Quality: 34},
	}

	for _, w := range weightSets {
		for _, bid := range bids {
			score, err := Score(bid, w, bounds)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
	}
}

func TestScore_MonotonicInPriceAndDelivery(t *testing.T) {
	bounds := Bounds{MaxPrice: 500000, MaxDeliveryDays: 60}
	w := DefaultWeights

	prev := 101
	for _, price := range []float64{100000, 200000, 300000, 400000, 500000} {
		score, err := Score(makeBid(price, 30), w, bounds)
		require.NoError(t, err)
		assert.LessOrEqual(t, score, prev, "дороже не должно оцениваться выше")
		prev = score
	}

	prev = 101
	for _, days := range []int{5, 15, 30, 45, 60} {
		score, err := Score(makeBid(250000, days), w, bounds)
		require.NoError(t, err)
		assert.LessOrEqual(t, score, prev, "дольше не должно оцениваться выше")
		prev = score
	}
}

func TestSubScoresFor_SingleBidDegenerate(t *testing.T) {
	bid := makeBid(150000, 20)
	bounds := BoundsFor([]models.Bid{bid})

	ss := SubScoresFor(bid, bounds)
	assert.Zero(t, ss.Price)
	assert.Zero(t, ss.Delivery)
	assert.Equal(t, PlaceholderQualityScore, ss.Quality)
}

func TestSubScoresFor_ClampsOutOfRange(t *testing.T) {
	bounds := Bounds{MaxPrice: 100000, MaxDeliveryDays: 10}

	// Цена выше максимума набора — оценка 0, не отрицательная.
	ss := SubScoresFor(makeBid(150000, 15), bounds)
	assert.Zero(t, ss.Price)
	assert.Zero(t, ss.Delivery)

	// Нулевые границы — оценка 0, не деление на ноль.
	ss = SubScoresFor(makeBid(50000, 5), Bounds{})
	assert.Zero(t, ss.Price)
	assert.Zero(t, ss.Delivery)
}

func TestRank_ByPriceAndDelivery(t *testing.T) {
	bids := []models.Bid{
		makeBid(300000, 10),
		makeBid(100000, 30),
		makeBid(200000, 20),
	}

	byPrice, err := Rank(bids, SortByPrice)
	require.NoError(t, err)
	require.Len(t, byPrice, 3)
	assert.Equal(t, 100000.0, byPrice[0].Price)
	assert.Equal(t, 200000.0, byPrice[1].Price)
	assert.Equal(t, 300000.0, byPrice[2].Price)

	byDelivery, err := Rank(bids, SortByDeliveryDays)
	require.NoError(t, err)
	assert.Equal(t, 10, byDelivery[0].DeliveryDays)
	assert.Equal(t, 30, byDelivery[2].DeliveryDays)

	// Исходный срез не изменяется.
	assert.Equal(t, 300000.0, bids[0].Price)
}

func TestRank_ByScoreDescending(t *testing.T) {
	scores := []int{70, 95, 80}
	bids := make([]models.Bid, 0, len(scores))
	for i, s := range scores {
		bid := makeBid(float64(100000*(i+1)), 10*(i+1))
		score := s
		bid.Score = &score
		bids = append(bids, bid)
	}

	ranked, err := Rank(bids, SortByScore)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, 95, *ranked[0].Score)
	assert.Equal(t, 80, *ranked[1].Score)
	assert.Equal(t, 70, *ranked[2].Score)

	// Пустой ключ — сортировка по оценке по умолчанию.
	byDefault, err := Rank(bids, "")
	require.NoError(t, err)
	assert.Equal(t, 95, *byDefault[0].Score)
}

func TestRank_StableOnTies(t *testing.T) {
	first := makeBid(100000, 10)
	second := makeBid(100000, 20)
	third := makeBid(100000, 30)

	ranked, err := Rank([]models.Bid{first, second, third}, SortByPrice)
	require.NoError(t, err)
	assert.Equal(t, first.ID, ranked[0].ID)
	assert.Equal(t, second.ID, ranked[1].ID)
	assert.Equal(t, third.ID, ranked[2].ID)
}

func TestRank_EmptyAndUnknownKey(t *testing.T) {
	ranked, err := Rank(nil, SortByScore)
	require.NoError(t, err)
	assert.Empty(t, ranked)

	_, err = Rank([]models.Bid{makeBid(1, 1)}, "budget")
	assert.Error(t, err)
}

func TestRedistributeWeights_SumsToHundred(t *testing.T) {
	cases := []struct {
		name     string
		start    Weights
		key      string
		newValue int
	}{
		{"увеличение цены", Weights{Price: 40, Delivery: 30, Quality: 30}, WeightPrice, 60},
		{"уменьшение цены", Weights{Price: 40, Delivery: 30, Quality: 30}, WeightPrice, 10},
		{"вес в ноль", Weights{Price: 40, Delivery: 30, Quality: 30}, WeightDelivery, 0},
		{"вес в сто", Weights{Price: 40, Delivery: 30, Quality: 30}, WeightQuality, 100},
		{"неравные остальные", Weights{Price: 70, Delivery: 20, Quality: 10}, WeightPrice, 35},
		{"остальные нулевые", Weights{Price: 100, Delivery: 0, Quality: 0}, WeightPrice, 40},
		{"без изменений", Weights{Price: 40, Delivery: 30, Quality: 30}, WeightPrice, 40},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RedistributeWeights(tc.start, tc.key, tc.newValue)
			require.NoError(t, err)
			assert.Equal(t, 100, got.Sum())
			assert.GreaterOrEqual(t, got.Price, 0)
			assert.GreaterOrEqual(t, got.Delivery, 0)
			assert.GreaterOrEqual(t, got.Quality, 0)
		})
	}
}

func TestRedistributeWeights_NonHundredSumInput(t *testing.T) {
	// Входные веса с суммой, отличной от 100, не должны давать
	// отрицательных компонентов: результат нормализуется к сумме 100.
	cases := []struct {
		name     string
		start    Weights
		key      string
		newValue int
	}{
		{"сумма больше ста", Weights{Price: 0, Delivery: 0, Quality: 300}, WeightQuality, 0},
		{"сумма больше ста, ненулевые остальные", Weights{Price: 90, Delivery: 90, Quality: 90}, WeightPrice, 10},
		{"сумма меньше ста", Weights{Price: 10, Delivery: 5, Quality: 5}, WeightPrice, 50},
		{"все нулевые", Weights{}, WeightDelivery, 40},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RedistributeWeights(tc.start, tc.key, tc.newValue)
			require.NoError(t, err)
			assert.Equal(t, 100, got.Sum())
			assert.GreaterOrEqual(t, got.Price, 0)
			assert.GreaterOrEqual(t, got.Delivery, 0)
			assert.GreaterOrEqual(t, got.Quality, 0)
		})
	}
}

func TestRedistributeWeights_NegativeInput(t *testing.T) {
	_, err := RedistributeWeights(Weights{Price: -10, Delivery: 60, Quality: 50}, WeightPrice, 40)
	assert.ErrorIs(t, err, ErrNegativeWeight)
}

func TestRedistributeWeights_Proportional(t *testing.T) {
	// Снижение цены с 40 до 20 отдаёт 20 пунктов поровну (30:30).
	got, err := RedistributeWeights(Weights{Price: 40, Delivery: 30, Quality: 30}, WeightPrice, 20)
	require.NoError(t, err)
	assert.Equal(t, Weights{Price: 20, Delivery: 40, Quality: 40}, got)
}

func TestRedistributeWeights_Invalid(t *testing.T) {
	_, err := RedistributeWeights(DefaultWeights, "budget", 50)
	assert.ErrorIs(t, err, ErrUnknownWeight)

	_, err = RedistributeWeights(DefaultWeights, WeightPrice, 120)
	assert.ErrorIs(t, err, ErrWeightOutOfRange)

	_, err = RedistributeWeights(DefaultWeights, WeightPrice, -5)
	assert.ErrorIs(t, err, ErrWeightOutOfRange)
}
