package cat

// Binary Coded Decimal helpers shared by the Yaesu and Icom codecs. Each
// byte packs two decimal digits, tens in the high nibble, ones in the low
// nibble. 0x14 is the value 14, never 20: treating a BCD byte as a plain
// 8-bit integer is the classic bug these helpers exist to prevent.

// bcdDecode returns the two-digit value packed in b.
func bcdDecode(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// bcdEncode packs a value 0-99 into one BCD byte.
func bcdEncode(v int) byte {
	return byte((v/10)<<4 | v%10)
}
