package radius

import (
	"encoding/binary"
	"errors"
	"net"
	"strconv"

	"layeh.com/radius"
)

// RADIUS属性タイプ定数（RFC 2865/2866）
const (
	AttrTypeUserName         = 1
	AttrTypeNASIPAddress     = 4
	AttrTypeNASPort          = 5
	AttrTypeFramedIPAddr     = 8
	AttrTypeCalledStationID  = 30
	AttrTypeCallingStationID = 31
	AttrTypeProxyState       = 33
	AttrTypeAcctStatusType   = 40
	AttrTypeAcctInputOct     = 42
	AttrTypeAcctOutputOct    = 43
	AttrTypeAcctSessionID    = 44
	AttrTypeAcctSessionTime  = 46
	AttrTypeAcctTermCause    = 49
	AttrTypeAcctInputGiga    = 52
	AttrTypeAcctOutputGiga   = 53
	AttrTypeInterimInterval  = 85
	AttrTypeNASPortID        = 87
)

// 属性抽出エラー
var (
	ErrMissingStatusType = errors.New("missing Acct-Status-Type")
)

// ExtractAccountingAttributes はAccounting-Requestから必要な属性を抽出する。
// Acct-Status-Type以外は欠落時に数値0・空文字列を既定値とする。
// Session-Id / User-Name の欠落はここではエラーにしない（no-op分類は処理側で行う）。
func ExtractAccountingAttributes(packet *radius.Packet) (*AccountingAttributes, error) {
	attrs := &AccountingAttributes{}

	// Acct-Status-Type（必須）
	statusTypeAttr := packet.Get(radius.Type(AttrTypeAcctStatusType))
	if len(statusTypeAttr) < 4 {
		return nil, ErrMissingStatusType
	}
	attrs.AcctStatusType = binary.BigEndian.Uint32(statusTypeAttr)

	attrs.AcctSessionID = getString(packet, AttrTypeAcctSessionID)
	attrs.UserName = getString(packet, AttrTypeUserName)
	attrs.NasIPAddress = getIPv4(packet, AttrTypeNASIPAddress)
	attrs.FramedIPAddress = getIPv4(packet, AttrTypeFramedIPAddr)
	attrs.CalledStationID = getString(packet, AttrTypeCalledStationID)
	attrs.CallingStationID = getString(packet, AttrTypeCallingStationID)

	attrs.SessionTime = getUint32(packet, AttrTypeAcctSessionTime)
	attrs.InputOctets = getUint32(packet, AttrTypeAcctInputOct)
	attrs.OutputOctets = getUint32(packet, AttrTypeAcctOutputOct)
	attrs.InputGigawords = getUint32(packet, AttrTypeAcctInputGiga)
	attrs.OutputGigawords = getUint32(packet, AttrTypeAcctOutputGiga)
	attrs.TerminateCause = getUint32(packet, AttrTypeAcctTermCause)
	attrs.InterimInterval = getUint32(packet, AttrTypeInterimInterval)

	// NAS-Port-Id（文字列）優先、なければNAS-Port（整数）
	attrs.NASPort = getString(packet, AttrTypeNASPortID)
	if attrs.NASPort == "" {
		if port := getUint32(packet, AttrTypeNASPort); port != 0 {
			attrs.NASPort = strconv.FormatUint(uint64(port), 10)
		}
	}

	// Proxy-State（複数可）
	attrs.ProxyStates = extractProxyStatesRaw(packet)

	return attrs, nil
}

// getString は文字列属性を取得する。欠落時は空文字列。
func getString(packet *radius.Packet, attrType int) string {
	attr := packet.Get(radius.Type(attrType))
	if len(attr) == 0 {
		return ""
	}
	return string(attr)
}

// getUint32 は32bit整数属性を取得する。欠落・不正長時は0。
func getUint32(packet *radius.Packet, attrType int) uint32 {
	attr := packet.Get(radius.Type(attrType))
	if len(attr) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(attr)
}

// getIPv4 はIPv4アドレス属性を取得する。欠落・不正長時は空文字列。
func getIPv4(packet *radius.Packet, attrType int) string {
	attr := packet.Get(radius.Type(attrType))
	if len(attr) != 4 {
		return ""
	}
	return net.IP(attr).String()
}

// extractProxyStatesRaw はパケットからProxy-State属性を直接抽出する
func extractProxyStatesRaw(packet *radius.Packet) [][]byte {
	var states [][]byte
	for _, attr := range packet.Attributes {
		if attr.Type == radius.Type(AttrTypeProxyState) {
			states = append(states, attr.Attribute)
		}
	}
	return states
}
