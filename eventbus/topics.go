package eventbus

// Global topic declarations. Kept in one place so they can be swapped
// for per-environment configuration later.

var (
	TopicOrderEvents = NewTopic("eo-tracker.order.events")
)

var AllTopics = []Topic{
	TopicOrderEvents,
}
