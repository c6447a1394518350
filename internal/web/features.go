package web

// FeatureSet は学校ごとに有効化される機能フラグの集合。
// リクエストスコープで解決され、テンプレートへ明示的に渡される。
// グローバル状態やブラウザストレージには保持しない。
type FeatureSet struct {
	// MusicPlayer はミュージックプレイリストページへのアクセスを許可する。
	MusicPlayer bool
}

// schoolFeatures は学校識別子から機能フラグへの許可リスト。
// 自由テキストの部分一致ではなく、完全一致のみを許可する。
var schoolFeatures = map[string]FeatureSet{
	"gist-cogeo": {MusicPlayer: true},
}

// FeaturesForSchool は学校識別子に対応する機能フラグを返す。
// 許可リストにない識別子（空文字列を含む）には全機能無効のゼロ値を返す。
func FeaturesForSchool(school string) FeatureSet {
	return schoolFeatures[school]
}
