package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"

	ActionDatabaseTransactionFailed = "database_transaction_failed"
	ActionBroadcastDropped          = "broadcast_delivery_dropped"

	ActionExternalServiceFailed = "external_service_failed"
)
