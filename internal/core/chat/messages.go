package chat

// ユーザーに表示する固定メッセージ
const (
	MsgMissingCredential = "Potreban mi je OpenAI API ključ da bih mogao da radim. " +
		"Zamolite administratora da ga podesi u odeljku za otpremanje dokumenata."

	MsgNoDocuments = "U mojoj bazi znanja još nema dokumenata. " +
		"Zamolite administratora da otpremi dokumente kako bih mogao da odgovaram na osnovu njihovog sadržaja."

	MsgNoResponse = "Nisam uspeo da generišem odgovor. Pokušajte ponovo."

	MsgInvalidCredential = "Izgleda da postoji problem sa OpenAI API ključem. " +
		"Proverite da li je ispravan i da li ima dovoljno kredita."

	// MsgErrorFormat は %s にエラー詳細を埋め込む
	MsgErrorFormat = "Izvinite, došlo je do greške: %s"

	MsgUnexpected = "Izvinite, došlo je do neočekivane greške. Pokušajte ponovo."

	DefaultChatTitle = "Novi razgovor"

	ContinuationPlaceholder = "(Nema novog sadržaja iz dokumenata. Ovo je nastavak prethodnog razgovora; " +
		"nastavi odgovor na osnovu prethodne razmene.)"
)
