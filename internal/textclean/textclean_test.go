package textclean

import "testing"

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
		{"plain", "Hello world", "Hello world"},
		{"collapse", "  Hello \n\n  world\t! ", "Hello world !"},
		{"tags", "<p>Qeveria <b>miratoi</b> ligjin</p>", "Qeveria miratoi ligjin"},
		{"entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"nbsp", "a&nbsp;&nbsp;b", "a b"},
		{"script dropped", "<p>visible</p><script>var x = 1;</script>", "visible"},
		{"image only", `<img src="x.png" alt="photo">`, ""},
		{"escaped markup", "&lt;b&gt;bold&lt;/b&gt; text", "bold text"},
		{"unbalanced", "<div><p>open paragraph", "open paragraph"},
		{"escaped script keeps words", "Si të përdorni &lt;script&gt; në faqe", "Si të përdorni në faqe"},
		{"escaped tag keeps words", "Use &lt;br&gt; tags for breaks", "Use tags for breaks"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in); got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"<p>Lajmi   i   ditës</p>\n<p>Tirana</p>",
		"&lt;i&gt;x&lt;/i&gt; &amp;amp; y",
		"a < b and c > d",
		"<<>>&&;;",
		"<a href='https://top-channel.tv'>Top   Channel</a>\r\n",
		"Si të përdorni &lt;script&gt; në faqe",
		"&lt;style&gt;p { color: red }&lt;/style&gt; teksti",
	}

	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}
