package redis

import "fmt"

const ns = "seatplan:v1"

func KeyPlan(id string) string {
	return fmt.Sprintf("%s:plan:%s", ns, id)
}

func KeyPlanSummary(id string) string {
	return fmt.Sprintf("%s:plan:%s:summary", ns, id)
}

func KeyDefaultLayout(tables int, mode string) string {
	return fmt.Sprintf("%s:layout:default:%d:%s", ns, tables, mode)
}

func KeyRateLimit(action, client string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, action, client)
}

func KeyIdemSave(idemKey string) string {
	return fmt.Sprintf("%s:idem:save:%s", ns, idemKey)
}

func ChannelPlanSaved() string {
	return ns + ":plans:saved"
}
