package radius

// AccountingAttributes はAccounting-Requestから抽出された属性を表す
type AccountingAttributes struct {
	AcctStatusType   uint32   // Acct-Status-Type（必須）
	AcctSessionID    string   // Acct-Session-Id
	UserName         string   // User-Name
	NasIPAddress     string   // NAS-IP-Address
	FramedIPAddress  string   // Framed-IP-Address
	NASPort          string   // NAS-Port-Id（なければNAS-Portの十進表現）
	CalledStationID  string   // Called-Station-Id
	CallingStationID string   // Calling-Station-Id
	SessionTime      uint32   // Acct-Session-Time（秒）
	InputOctets      uint32   // Acct-Input-Octets
	OutputOctets     uint32   // Acct-Output-Octets
	InputGigawords   uint32   // Acct-Input-Gigawords（32bitラップ回数）
	OutputGigawords  uint32   // Acct-Output-Gigawords
	TerminateCause   uint32   // Acct-Terminate-Cause
	InterimInterval  uint32   // Acct-Interim-Interval（秒）
	ProxyStates      [][]byte // Proxy-State属性（複数可）
}

// TotalInputBytes はギガワード補正済みの入力バイト数を返す。
// total = gigawords * 2^32 + octets
func (a *AccountingAttributes) TotalInputBytes() uint64 {
	return uint64(a.InputGigawords)<<32 + uint64(a.InputOctets)
}

// TotalOutputBytes はギガワード補正済みの出力バイト数を返す。
func (a *AccountingAttributes) TotalOutputBytes() uint64 {
	return uint64(a.OutputGigawords)<<32 + uint64(a.OutputOctets)
}

// Acct-Status-Type値（RFC 2866）
const (
	AcctStatusTypeStart         uint32 = 1
	AcctStatusTypeStop          uint32 = 2
	AcctStatusTypeInterim       uint32 = 3
	AcctStatusTypeAccountingOn  uint32 = 7
	AcctStatusTypeAccountingOff uint32 = 8
)

// StatusTypeName はAcct-Status-Type値のログ用名称を返す。
func StatusTypeName(statusType uint32) string {
	switch statusType {
	case AcctStatusTypeStart:
		return "Start"
	case AcctStatusTypeStop:
		return "Stop"
	case AcctStatusTypeInterim:
		return "Interim-Update"
	case AcctStatusTypeAccountingOn:
		return "Accounting-On"
	case AcctStatusTypeAccountingOff:
		return "Accounting-Off"
	default:
		return "Unknown"
	}
}
