package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/b2bid/bidding-backend/internal/models"
)

// Пакет scoring содержит единственную каноническую формулу оценки заявок.
// Все места, где показывается или сравнивается оценка (API сравнения,
// ранжирование, тесты), обязаны использовать именно её.

// PlaceholderQualityScore — заглушка оценки качества. Реальной метрики
// качества (сертификаты, история поставок) в системе пока нет, поэтому
// все заявки получают одинаковое нейтральное значение. Потребители
// должны понимать, что это не настоящий сигнал.
const PlaceholderQualityScore = 80.0

// Ошибки валидации весов.
var (
	ErrZeroWeightSum  = errors.New("scoring: сумма весов равна нулю")
	ErrNegativeWeight = errors.New("scoring: вес не может быть отрицательным")
	ErrUnknownWeight  = errors.New("scoring: неизвестный ключ веса")
	ErrWeightOutOfRange = errors.New("scoring: вес должен быть в диапазоне 0..100")
)

// Ключи весов и сортировки.
const (
	WeightPrice    = "price"
	WeightDelivery = "delivery"
	WeightQuality  = "quality"

	SortByScore        = "score"
	SortByPrice        = "price"
	SortByDeliveryDays = "delivery_days"
)

// Weights задаёт веса критериев оценки. По договорённости сумма равна 100,
// но формула этого не требует: композит нормализуется по фактической сумме.
type Weights struct {
	Price    int `json:"price"`
	Delivery int `json:"delivery"`
	Quality  int `json:"quality"`
}

// DefaultWeights — веса по умолчанию для сравнения заявок.
var DefaultWeights = Weights{Price: 40, Delivery: 30, Quality: 30}

// Sum возвращает фактическую сумму весов.
func (w Weights) Sum() int {
	return w.Price + w.Delivery + w.Quality
}

// Validate проверяет веса: отрицательные значения и нулевая сумма —
// ошибки валидации, а не повод молча вернуть 0.
func (w Weights) Validate() error {
	if w.Price < 0 || w.Delivery < 0 || w.Quality < 0 {
		return ErrNegativeWeight
	}
	if w.Sum() == 0 {
		return ErrZeroWeightSum
	}
	return nil
}

// Bounds содержит максимумы по набору конкурирующих заявок. Частные оценки
// нормализуются относительно конкурентов, а не абсолютной шкалы.
type Bounds struct {
	MaxPrice        float64 `json:"max_price"`
	MaxDeliveryDays int     `json:"max_delivery_days"`
}

// BoundsFor вычисляет границы по набору заявок проекта.
func BoundsFor(bids []models.Bid) Bounds {
	var b Bounds
	for _, bid := range bids {
		if bid.Price > b.MaxPrice {
			b.MaxPrice = bid.Price
		}
		if bid.DeliveryDays > b.MaxDeliveryDays {
			b.MaxDeliveryDays = bid.DeliveryDays
		}
	}
	return b
}

// SubScores содержит частные оценки заявки по каждому критерию, 0..100.
type SubScores struct {
	Price    float64 `json:"price"`
	Delivery float64 `json:"delivery"`
	Quality  float64 `json:"quality"`
}

// SubScoresFor вычисляет частные оценки заявки относительно границ набора.
// Дешевле и быстрее — выше оценка. Если цена заявки совпадает с максимумом
// набора (в частности, когда заявка единственная), частная оценка равна 0:
// при отсутствии разброса конкурентов это ожидаемое поведение, а не дефект.
func SubScoresFor(bid models.Bid, bounds Bounds) SubScores {
	return SubScores{
		Price:    relativeScore(bounds.MaxPrice-bid.Price, bounds.MaxPrice),
		Delivery: relativeScore(float64(bounds.MaxDeliveryDays-bid.DeliveryDays), float64(bounds.MaxDeliveryDays)),
		Quality:  PlaceholderQualityScore,
	}
}

// relativeScore возвращает clamp01(num/den)*100; при нулевом знаменателе — 0.
func relativeScore(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return clamp01(num/den) * 100
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Composite возвращает взвешенное среднее частных оценок, нормализованное
// по фактической сумме весов. Результат — вещественное число в [0,100]
// до округления.
func Composite(ss SubScores, w Weights) (float64, error) {
	if err := w.Validate(); err != nil {
		return 0, err
	}
	sum := float64(w.Sum())
	return (ss.Price*float64(w.Price) + ss.Delivery*float64(w.Delivery) + ss.Quality*float64(w.Quality)) / sum, nil
}

// Score возвращает итоговую оценку заявки — целое в [0,100]. Значения 0 и
// 100 валидны и не являются признаком ошибки.
func Score(bid models.Bid, w Weights, bounds Bounds) (int, error) {
	composite, err := Composite(SubScoresFor(bid, bounds), w)
	if err != nil {
		return 0, err
	}
	return int(math.Round(composite)), nil
}

// Rank возвращает новый срез заявок, упорядоченный по ключу сортировки:
// price и delivery_days — по возрастанию, score — по убыванию (лучшие
// первыми, ключ по умолчанию). Сортировка стабильная: при равенстве
// сохраняется исходный порядок подачи. Входной срез не изменяется.
func Rank(bids []models.Bid, sortKey string) ([]models.Bid, error) {
	if len(bids) == 0 {
		return []models.Bid{}, nil
	}

	ranked := make([]models.Bid, len(bids))
	copy(ranked, bids)

	switch sortKey {
	case SortByPrice:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Price < ranked[j].Price
		})
	case SortByDeliveryDays:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].DeliveryDays < ranked[j].DeliveryDays
		})
	case SortByScore, "":
		sort.SliceStable(ranked, func(i, j int) bool {
			return scoreOf(ranked[i]) > scoreOf(ranked[j])
		})
	default:
		return nil, fmt.Errorf("scoring: неизвестный ключ сортировки %q", sortKey)
	}

	return ranked, nil
}

// scoreOf возвращает вычисленную оценку заявки; заявки без оценки
// опускаются в конец списка.
func scoreOf(bid models.Bid) int {
	if bid.Score == nil {
		return -1
	}
	return *bid.Score
}

// RedistributeWeights применяет новое значение к одному весу и
// пропорционально делит остаток до 100 между двумя остальными. Доли
// неотрицательны по построению, поэтому результат всегда состоит из
// неотрицательных весов с суммой ровно 100 — даже если сумма входных
// весов отличалась от 100. Остаток округления поглощает наибольший из
// неизменяемых весов.
func RedistributeWeights(w Weights, editedKey string, newValue int) (Weights, error) {
	if newValue < 0 || newValue > 100 {
		return Weights{}, ErrWeightOutOfRange
	}
	if w.Price < 0 || w.Delivery < 0 || w.Quality < 0 {
		return Weights{}, ErrNegativeWeight
	}

	values := map[string]int{
		WeightPrice:    w.Price,
		WeightDelivery: w.Delivery,
		WeightQuality:  w.Quality,
	}

	if _, ok := values[editedKey]; !ok {
		return Weights{}, ErrUnknownWeight
	}

	var others []string
	totalOthers := 0
	for _, key := range []string{WeightPrice, WeightDelivery, WeightQuality} {
		if key != editedKey {
			others = append(others, key)
			totalOthers += values[key]
		}
	}

	values[editedKey] = newValue
	remainder := 100 - newValue

	if totalOthers > 0 {
		// Меньший из остальных получает округлённую долю, больший —
		// точный остаток: так сумма сходится без коррекции задним числом.
		smaller, larger := others[0], others[1]
		if values[smaller] > values[larger] {
			smaller, larger = larger, smaller
		}
		share := int(math.Round(float64(remainder) * float64(values[smaller]) / float64(totalOthers)))
		values[smaller] = share
		values[larger] = remainder - share
	} else {
		// Остальные веса нулевые: делим остаток поровну.
		half := remainder / 2
		values[others[0]] = half
		values[others[1]] = remainder - half
	}

	return Weights{
		Price:    values[WeightPrice],
		Delivery: values[WeightDelivery],
		Quality:  values[WeightQuality],
	}, nil
}
