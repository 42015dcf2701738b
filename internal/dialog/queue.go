package dialog

// QtyQueue — очередь вопросов «заявка/остаток» для аптечного отчёта.
// Препараты опрашиваются строго в порядке выбора; частично отвеченная
// позиция (заявка есть, остатка нет) живёт в Current и переживает
// сохранение диалога между сообщениями.
type QtyQueue struct {
	Pending []int64   `json:"pending"`
	Current *QtyItem  `json:"current,omitempty"`
	Done    []QtyItem `json:"done"`
}

type QtyItem struct {
	MedID     int64 `json:"med_id"`
	Requested int   `json:"req"`
	Remaining int   `json:"rem"`
}

func NewQtyQueue(medIDs []int64) *QtyQueue {
	pending := make([]int64, len(medIDs))
	copy(pending, medIDs)
	return &QtyQueue{Pending: pending}
}

// Next снимает голову очереди в Current. Возвращает id препарата,
// о котором спрашиваем, и ok=false, когда спрашивать больше нечего.
func (q *QtyQueue) Next() (int64, bool) {
	if q.Current != nil {
		return q.Current.MedID, true
	}
	if len(q.Pending) == 0 {
		return 0, false
	}
	q.Current = &QtyItem{MedID: q.Pending[0]}
	q.Pending = q.Pending[1:]
	return q.Current.MedID, true
}

func (q *QtyQueue) SetRequested(n int) {
	if q.Current != nil {
		q.Current.Requested = n
	}
}

// SetRemaining завершает текущую позицию и переносит её в Done.
func (q *QtyQueue) SetRemaining(n int) {
	if q.Current == nil {
		return
	}
	q.Current.Remaining = n
	q.Done = append(q.Done, *q.Current)
	q.Current = nil
}

func (q *QtyQueue) Empty() bool {
	return q.Current == nil && len(q.Pending) == 0
}

const qtyQueueKey = "qty_queue"

func SetQueue(p Payload, q *QtyQueue) { p[qtyQueueKey] = q }

func ClearQueue(p Payload) { delete(p, qtyQueueKey) }

func GetQueue(p Payload) (*QtyQueue, bool) {
	var q QtyQueue
	if !getStruct(p, qtyQueueKey, &q) {
		return nil, false
	}
	return &q, true
}
