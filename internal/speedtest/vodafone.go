package speedtest

// Vodafone's public speedtest mirror: a fixed large payload for download
// measurement and a sink endpoint that accepts and discards uploads.
const (
	vodafoneDownloadEndpoint = "https://speedtest-64.speedtest.vodafone-ip.de/data.zero.bin.512M"
	vodafoneUploadEndpoint   = "https://speedtest-64.speedtest.vodafone-ip.de/empty.txt"
)
