package deliver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Delivery outcome label values.
const (
	outcomeMedia   = "media"
	outcomeCover   = "cover"
	outcomeButtons = "buttons"
	outcomeNothing = "nothing"
)

// deliveriesTotal counts completed deliveries by what the user ended up
// with.
var deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "deliver_total",
	Help: "Total number of delivery cascades by outcome",
}, []string{"outcome"})
