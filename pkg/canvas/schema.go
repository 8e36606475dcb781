package canvas

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by instance name so that
// several canvases can share one Redis server. The instance name is wrapped
// in braces, which makes it the Redis Cluster hash tag: every key of one
// canvas lands in the same slot, as the purchase script requires.
//
// Key pattern: canvas:{instance_name}:{entity}

// InfoKey returns the Redis key for the genesis record hash.
// Pattern: canvas:{instance_name}:info
func InfoKey(instanceName string) string {
	return fmt.Sprintf("canvas:{%s}:info", instanceName)
}

// ColorsKey returns the Redis key for the color overlay list.
// Pattern: canvas:{instance_name}:colors
func ColorsKey(instanceName string) string {
	return fmt.Sprintf("canvas:{%s}:colors", instanceName)
}

// PixelKey returns the Redis key for the ledger entry of a slot.
// Pattern: canvas:{instance_name}:pixel:{slot}
func PixelKey(instanceName string, slot uint32) string {
	return fmt.Sprintf("canvas:{%s}:pixel:%s", instanceName, SlotKey(slot))
}

// PurchaseEventsChannel returns the Pub/Sub channel name for purchase events.
// Pattern: canvas:{instance_name}:purchase_events
func PurchaseEventsChannel(instanceName string) string {
	return fmt.Sprintf("canvas:{%s}:purchase_events", instanceName)
}
