package relation

import "strings"

// ContextName derives the context spawned by an intent from its name. The
// derivation is deterministic and shared by exporters and parsers, so that
// exported schemas and later predictions agree on naming without any shared
// registry.
//
//	ContextName("shop.order_fish") == "c_shop_order_fish"
func ContextName(intentName string) string {
	return "c_" + strings.ReplaceAll(intentName, ".", "_")
}

// EventName derives the trigger event associated with an intent.
//
//	EventName("test.intent_name") == "E_TEST_INTENT_NAME"
func EventName(intentName string) string {
	return "E_" + strings.ToUpper(strings.ReplaceAll(intentName, ".", "_"))
}
