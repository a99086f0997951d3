// Package webauthtest предоставляет тестовое окружение для интеграционных
// тестов клиентов webauth.
//
// Anchor поднимает в процессе сервер аутентификации: выдаёт challenge,
// проверяет подписанный challenge, выдаёт JWT и публикует stellar.toml.
// ClientDomain поднимает домен кошелька с сервером подписи.
// StartNATS запускает NATS контейнер через testcontainers.
//
// Использование в тестах:
//
//	func TestLogin(t *testing.T) {
//	    anchor, err := webauthtest.Start()
//	    require.NoError(t, err)
//	    defer anchor.Close()
//
//	    engine, err := webauth.New(anchor.EngineConfig())
//	    require.NoError(t, err)
//	    defer engine.Close()
//
//	    keys, _ := identity.Generate()
//	    token, err := engine.Authenticate(ctx, webauth.Request{
//	        Account: keys.Address(),
//	        Signers: []identity.Signer{keys},
//	    })
//	}
package webauthtest
