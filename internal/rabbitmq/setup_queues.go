package rabbitmq

// QueueConfig очередь и ключ, которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Topology обменник типа direct и привязанные к нему очереди.
type Topology struct {
	Exchange string
	Queues   []QueueConfig
}

const (
	PaymentsExchange        = "payments"
	PaymentsConfirmedKey    = "confirmed"
	PaymentsConfirmedQueue  = "payments.confirmed"
	defaultConsumerPrefetch = 10
)

// PaymentsTopology топология для событий подтверждения оплаты.
func PaymentsTopology() Topology {
	return Topology{
		Exchange: PaymentsExchange,
		Queues: []QueueConfig{
			{QueueName: PaymentsConfirmedQueue, RoutingKey: PaymentsConfirmedKey},
		},
	}
}
