package radius

// terminateCauseNames はAcct-Terminate-Cause値の名称（RFC 2866）
var terminateCauseNames = map[uint32]string{
	1:  "User-Request",
	2:  "Lost-Carrier",
	3:  "Lost-Service",
	4:  "Idle-Timeout",
	5:  "Session-Timeout",
	6:  "Admin-Reset",
	7:  "Admin-Reboot",
	8:  "Port-Error",
	9:  "NAS-Error",
	10: "NAS-Request",
	11: "NAS-Reboot",
	12: "Port-Unneeded",
	13: "Port-Preempted",
	14: "Port-Suspended",
	15: "Service-Unavailable",
	16: "Callback",
	17: "User-Error",
	18: "Host-Request",
}

// TerminateCauseName はAcct-Terminate-Cause値のログ用名称を返す。
// 未知の値および0（属性欠落）は空文字列を返す。
func TerminateCauseName(cause uint32) string {
	return terminateCauseNames[cause]
}
