package catalog

// Default returns the built-in station list.
func Default() *Catalog {
	c, err := New(builtinStations)
	if err != nil {
		panic(err)
	}
	return c
}

func avatar(name, bg string) string {
	return "https://ui-avatars.com/api/?name=" + name + "&background=" + bg + "&color=fff&size=128&font-size=0.5"
}

var builtinStations = []Station{
	{ID: 1, Name: "Lofi Hip Hop", Genre: "Chill / Beats", URL: "https://stream.zeno.fm/0r0xa792kwzuv", Icon: "fa-coffee", Logo: avatar("Lofi+Hip+Hop", "e17055"), Color: MustRGB("#e17055"), Category: "International"},
	{ID: 2, Name: "Classical Masterpieces", Genre: "Classical", URL: "https://live.musopen.org:8085/streamvbr0", Icon: "fa-violin", Logo: avatar("Classical+Music", "fdcb6e"), Color: MustRGB("#fdcb6e"), Category: "International"},
	{ID: 3, Name: "Deep House Lounge", Genre: "Electronic", URL: "http://pulseedm.cdnstream1.com:8124/1373_128", Icon: "fa-headphones", Logo: avatar("Deep+House", "0984e3"), Color: MustRGB("#0984e3"), Category: "International"},
	{ID: 4, Name: "Jazz Cafe", Genre: "Jazz", URL: "http://jazz.streamr.ru/jazz-64.mp3", Icon: "fa-saxophone", Logo: avatar("Jazz+Cafe", "d63031"), Color: MustRGB("#d63031"), Category: "International"},
	{ID: 5, Name: "Pop Hits", Genre: "Pop", URL: "http://icecast.omroep.nl/3fm-bb-mp3", Icon: "fa-music", Logo: avatar("Pop+Hits", "e84393"), Color: MustRGB("#e84393"), Category: "International"},
	{ID: 6, Name: "News & Talk (BBC)", Genre: "News", URL: "https://bbcwssc.ic.llnwd.net/stream/bbcwssc_mp1_ws-eieuk", Icon: "fa-newspaper", Logo: avatar("BBC+News", "636e72"), Color: MustRGB("#636e72"), Category: "International"},
	{ID: 7, Name: "Radio Deejay", Genre: "Pop / Talk", URL: "http://radiodeejay-lh.akamaihd.net/i/RadioDeejay_Live_1@189857/master.m3u8", Icon: "fa-record-vinyl", Color: MustRGB("#D32F2F"), Category: "Italian"},
	{ID: 8, Name: "Radio 105", Genre: "Pop / Hits", URL: "http://icecast.unitedradio.it/Radio105.mp3", Icon: "fa-bolt", Color: MustRGB("#FBC02D"), Category: "Italian"},
	{ID: 9, Name: "RAI Radio 1", Genre: "News / Talk", URL: "http://icestreaming.rai.it/1.mp3", Icon: "fa-tower-broadcast", Color: MustRGB("#1976D2"), Category: "Italian"},
	{ID: 10, Name: "RTL 102.5", Genre: "Hit Music", URL: "https://shoutcast.rtl.it/rt1025.mp3", Icon: "fa-star", Color: MustRGB("#000000"), Category: "Italian"},
	{ID: 11, Name: "RDS", Genre: "Hits", URL: "https://icestreaming.rds.it/rds", Icon: "fa-radio", Color: MustRGB("#C2185B"), Category: "Italian"},
}
