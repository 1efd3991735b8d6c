package game

// Build order categories.
const (
	CategoryBuilding = "building"
	CategoryDefense  = "defense"
)

// BuildOrder :
// One queued construction on a planet. Orders for buildings
// pin their target slot at enqueue time so that completion
// finalizes the right slot even if the slot layout changed
// in between.
//
// The `ItemID` references the catalog entry being built.
//
// The `ItemName` carries the display name of the item.
//
// The `BuildTime` defines the total construction duration in
// seconds, derived from the industry cost.
//
// The `Category` is either `building` or `defense`.
//
// The `Progress` accumulates the elapsed construction time.
//
// The `Completed` marks the order as finished.
//
// The `SlotIndex` defines the pinned slot for buildings and
// is `-1` for defense orders.
type BuildOrder struct {
	ItemID    string  `json:"item_id" msgpack:"item_id"`
	ItemName  string  `json:"item_name" msgpack:"item_name"`
	BuildTime float64 `json:"build_time" msgpack:"build_time"`
	Category  string  `json:"category" msgpack:"category"`
	Progress  float64 `json:"progress" msgpack:"progress"`
	Completed bool    `json:"completed" msgpack:"completed"`
	SlotIndex int     `json:"slot_index" msgpack:"slot_index"`
}

// advance :
// Adds elapsed time to the order and marks it completed when
// the build time is reached.
//
// Returns whether the order just completed.
func (o *BuildOrder) advance(deltaSeconds float64) bool {
	o.Progress += deltaSeconds
	if o.Progress >= o.BuildTime {
		o.Completed = true
		return true
	}
	return false
}

// BuildQueue :
// Strict FIFO queue of build orders. Only the head order
// progresses: a second order waits until the first completes.
type BuildQueue struct {
	Orders []*BuildOrder `json:"orders" msgpack:"orders"`
}

// NewBuildQueue :
// Creates an empty build queue.
//
// Returns the built-in queue.
func NewBuildQueue() *BuildQueue {
	return &BuildQueue{}
}

// Enqueue :
// Appends an order at the tail of the queue.
//
// The `order` defines the order to append.
func (q *BuildQueue) Enqueue(order *BuildOrder) {
	q.Orders = append(q.Orders, order)
}

// Advance :
// Advances the head order by the elapsed time. Completed
// orders are dequeued and returned to the caller for
// finalization.
//
// The `deltaSeconds` defines the elapsed time to apply.
//
// Returns the completed order or `nil`.
func (q *BuildQueue) Advance(deltaSeconds float64) *BuildOrder {
	if len(q.Orders) == 0 {
		return nil
	}

	head := q.Orders[0]
	if head.advance(deltaSeconds) {
		q.Orders = q.Orders[1:]
		return head
	}

	return nil
}

// Len : Number of pending orders.
func (q *BuildQueue) Len() int {
	return len(q.Orders)
}
