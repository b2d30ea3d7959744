package asset

// SampleDefinition names a capture shipped in the application bundle.
type SampleDefinition struct {
	Name          string
	FileName      string
	AssetFileName string
}

// DefaultRoomSamples are the rooms bundled with the app.
var DefaultRoomSamples = []SampleDefinition{
	{Name: "Room 1", FileName: "room1_scan", AssetFileName: "Room1"},
	{Name: "Room 2", FileName: "room2_scan", AssetFileName: "Room2"},
}

// DefaultObjectSamples are the objects bundled with the app.
var DefaultObjectSamples = []SampleDefinition{
	{Name: "Kursi", FileName: "kursi_scan", AssetFileName: "Kursi"},
	{Name: "Vanesh", FileName: "vanesh_scan", AssetFileName: "Vanesh"},
	{Name: "Kursi Kotak", FileName: "kursi_kotak_scan", AssetFileName: "KursiKotak"},
	{Name: "Kursi Kotak 1", FileName: "kursi_kotak1_scan", AssetFileName: "KursiKoTAK1"},
}
